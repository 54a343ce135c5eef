package persistence

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
)

type memState struct {
	categories    map[uint]category.Category
	subCategories map[uint]subcategory.SubCategory
	parts         map[uint]part.Part

	// Unique-key indexes, kept in step with the maps above.
	categoryByName   map[string]uint
	subCategoryByKey map[subcategory.Key]uint
	partByNumber     map[string]uint

	specSeq uint
	seq     uint
}

func newMemState() *memState {
	return &memState{
		categories:       make(map[uint]category.Category),
		subCategories:    make(map[uint]subcategory.SubCategory),
		parts:            make(map[uint]part.Part),
		categoryByName:   make(map[string]uint),
		subCategoryByKey: make(map[subcategory.Key]uint),
		partByNumber:     make(map[string]uint),
	}
}

func (st *memState) clone() *memState {
	out := &memState{
		categories:       maps.Clone(st.categories),
		subCategories:    maps.Clone(st.subCategories),
		parts:            make(map[uint]part.Part, len(st.parts)),
		categoryByName:   maps.Clone(st.categoryByName),
		subCategoryByKey: maps.Clone(st.subCategoryByKey),
		partByNumber:     maps.Clone(st.partByNumber),
		specSeq:          st.specSeq,
		seq:              st.seq,
	}
	for id, p := range st.parts {
		out.parts[id] = p.Clone()
	}
	return out
}

func (st *memState) nextID() uint {
	st.seq++
	return st.seq
}

type memTxKey struct{}

// MemoryStore keeps the catalog in process memory with the same transactional
// behaviour as Store: InTx works on a copy that replaces the live state only when
// fn succeeds. Ids come from one shared sequence.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *memState

	partWriteHook func(part.Part) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

// OnPartWrite registers a hook called before every part create or update. A
// non-nil error aborts the write.
func (s *MemoryStore) OnPartWrite(hook func(part.Part) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partWriteHook = hook
}

func (s *MemoryStore) Categories() category.Repository       { return &memCategoryRepository{s} }
func (s *MemoryStore) SubCategories() subcategory.Repository { return &memSubCategoryRepository{s} }
func (s *MemoryStore) Parts() part.Repository                { return &memPartRepository{s} }

func (s *MemoryStore) InTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memState); ok {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, work)); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) read(ctx context.Context, fn func(*memState) error) error {
	if st, ok := ctx.Value(memTxKey{}).(*memState); ok {
		return fn(st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *MemoryStore) write(ctx context.Context, fn func(*memState) error) error {
	if st, ok := ctx.Value(memTxKey{}).(*memState); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *MemoryStore) hook() func(part.Part) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partWriteHook
}

type memCategoryRepository struct{ s *MemoryStore }

func (r *memCategoryRepository) FindByNames(ctx context.Context, names []string) ([]category.Category, error) {
	var out []category.Category
	err := r.s.read(ctx, func(st *memState) error {
		for _, n := range slices.Compact(slices.Sorted(slices.Values(names))) {
			if id, ok := st.categoryByName[n]; ok {
				out = append(out, st.categories[id])
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memCategoryRepository) Create(ctx context.Context, name string) (category.Category, error) {
	var out category.Category
	err := r.s.write(ctx, func(st *memState) error {
		if id, ok := st.categoryByName[name]; ok {
			out = st.categories[id]
			return nil
		}
		out = category.Category{ID: st.nextID(), Name: name}
		st.categories[out.ID] = out
		st.categoryByName[name] = out.ID
		return nil
	})
	return out, err
}

func (r *memCategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	var out []category.Category
	err := r.s.read(ctx, func(st *memState) error {
		out = slices.Collect(maps.Values(st.categories))
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

type memSubCategoryRepository struct{ s *MemoryStore }

func (r *memSubCategoryRepository) FindByKeys(ctx context.Context, keys []subcategory.Key) ([]subcategory.SubCategory, error) {
	seen := make(map[subcategory.Key]struct{}, len(keys))
	var out []subcategory.SubCategory
	err := r.s.read(ctx, func(st *memState) error {
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if id, ok := st.subCategoryByKey[k]; ok {
				out = append(out, st.subCategories[id])
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memSubCategoryRepository) Create(ctx context.Context, name string, categoryID uint) (subcategory.SubCategory, error) {
	var out subcategory.SubCategory
	err := r.s.write(ctx, func(st *memState) error {
		if _, ok := st.categories[categoryID]; !ok {
			return gerrors.Wrapf(subcategory.ErrCategoryMissing, "category %d", categoryID)
		}
		key := subcategory.Key{Name: name, CategoryID: categoryID}
		if id, ok := st.subCategoryByKey[key]; ok {
			out = st.subCategories[id]
			return nil
		}
		out = subcategory.SubCategory{ID: st.nextID(), Name: name, CategoryID: categoryID}
		st.subCategories[out.ID] = out
		st.subCategoryByKey[key] = out.ID
		return nil
	})
	return out, err
}

func (r *memSubCategoryRepository) List(ctx context.Context) ([]subcategory.SubCategory, error) {
	var out []subcategory.SubCategory
	err := r.s.read(ctx, func(st *memState) error {
		out = slices.Collect(maps.Values(st.subCategories))
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

type memPartRepository struct{ s *MemoryStore }

func (r *memPartRepository) FindByPartNumbers(ctx context.Context, partNumbers []string) ([]part.Part, error) {
	var out []part.Part
	err := r.s.read(ctx, func(st *memState) error {
		for _, n := range slices.Compact(slices.Sorted(slices.Values(partNumbers))) {
			if id, ok := st.partByNumber[n]; ok {
				out = append(out, st.parts[id].Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memPartRepository) Create(ctx context.Context, p part.Part) (part.Part, error) {
	if hook := r.s.hook(); hook != nil {
		if err := hook(p); err != nil {
			return part.Part{}, err
		}
	}
	var out part.Part
	err := r.s.write(ctx, func(st *memState) error {
		if _, taken := st.partByNumber[p.PartNumber]; taken {
			return gerrors.Wrapf(part.ErrPartNumberTaken, "part %q", p.PartNumber)
		}
		if _, ok := st.subCategories[p.SubCategoryID]; !ok {
			return gerrors.Wrapf(part.ErrSubCategoryMissing, "part %q", p.PartNumber)
		}
		out = p.Clone()
		out.ID = st.nextID()
		if out.Specification == nil {
			out.Specification = &part.Specification{}
		}
		st.specSeq++
		out.Specification.ID = st.specSeq
		out.Specification.PartID = out.ID
		st.parts[out.ID] = out
		st.partByNumber[out.PartNumber] = out.ID
		return nil
	})
	if err != nil {
		return part.Part{}, err
	}
	return out.Clone(), nil
}

func (r *memPartRepository) Update(ctx context.Context, p part.Part) (part.Part, error) {
	if hook := r.s.hook(); hook != nil {
		if err := hook(p); err != nil {
			return part.Part{}, err
		}
	}
	var out part.Part
	err := r.s.write(ctx, func(st *memState) error {
		existing, ok := st.parts[p.ID]
		if !ok {
			return gerrors.Wrapf(part.ErrNotFound, "part %d", p.ID)
		}
		if _, ok := st.subCategories[p.SubCategoryID]; !ok {
			return gerrors.Wrapf(part.ErrSubCategoryMissing, "part %q", p.PartNumber)
		}
		out = existing.Clone()
		out.SubCategoryID = p.SubCategoryID
		if p.DatasheetLink != nil {
			link := *p.DatasheetLink
			out.DatasheetLink = &link
		}
		spec := p.Specification.Clone()
		if spec == nil {
			spec = &part.Specification{}
		}
		if out.Specification != nil {
			spec.ID = out.Specification.ID
		} else {
			st.specSeq++
			spec.ID = st.specSeq
		}
		spec.PartID = out.ID
		out.Specification = spec
		st.parts[out.ID] = out
		return nil
	})
	if err != nil {
		return part.Part{}, err
	}
	return out.Clone(), nil
}

func (r *memPartRepository) List(ctx context.Context, params *part.FindParams) ([]part.Listing, error) {
	if params == nil {
		params = &part.FindParams{}
	}
	var out []part.Listing
	err := r.s.read(ctx, func(st *memState) error {
		for _, p := range st.parts {
			sc := st.subCategories[p.SubCategoryID]
			c := st.categories[sc.CategoryID]
			if params.Category != "" && c.Name != params.Category {
				continue
			}
			if params.SubCategory != "" && sc.Name != params.SubCategory {
				continue
			}
			if params.PartNumber != "" && p.PartNumber != params.PartNumber {
				continue
			}
			out = append(out, part.Listing{Part: p.Clone(), SubCategory: sc, Category: c})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}
