package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
)

const DefaultChunkSize = 50

var ErrUnresolvedSubCategory = errors.New("subcategory was not reconciled")

// UpsertResult counts the work done by PartUpserter.Upsert.
type UpsertResult struct {
	Created int
	Updated int
	Chunks  int
}

// ChunkProgress is called after each committed chunk.
type ChunkProgress func(chunk, total, rows int)

type PartUpserter struct {
	store     Store
	chunkSize int
}

func NewPartUpserter(store Store, chunkSize int) *PartUpserter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &PartUpserter{store: store, chunkSize: chunkSize}
}

func (u *PartUpserter) ChunkSize() int {
	return u.chunkSize
}

// ChunkCount is the number of transactions Upsert uses for n rows.
func (u *PartUpserter) ChunkCount(n int) int {
	return (n + u.chunkSize - 1) / u.chunkSize
}

// Upsert writes rows in chunks, one transaction per chunk, creating parts that do
// not exist and updating those that do. Existing parts are fetched once up front.
// A failed chunk is rolled back and stops the run; earlier chunks stay committed.
// A part number repeated in rows is written once per row, so the last row wins.
func (u *PartUpserter) Upsert(ctx context.Context, rows []Row, subCategories SubCategoryIDs, progress ChunkProgress) (UpsertResult, error) {
	var res UpsertResult
	if len(rows) == 0 {
		return res, nil
	}

	known, err := u.prefetch(ctx, rows)
	if err != nil {
		return res, err
	}

	total := u.ChunkCount(len(rows))
	for i := 0; i < total; i++ {
		start := i * u.chunkSize
		end := min(start+u.chunkSize, len(rows))
		chunk := rows[start:end]

		written := make(map[string]uint, len(chunk))
		created, updated := 0, 0
		err := u.store.InTx(ctx, func(txCtx context.Context) error {
			for _, row := range chunk {
				subCategoryID, ok := subCategories[row.subCategoryRef()]
				if !ok {
					return fmt.Errorf("%w: %s", ErrUnresolvedSubCategory, row.subCategoryRef())
				}
				p := part.Part{
					PartNumber:    row.PartNumber,
					DatasheetLink: row.DatasheetLink,
					SubCategoryID: subCategoryID,
					Specification: BuildSpecification(row.Specs),
				}

				id, exists := written[row.PartNumber]
				if !exists {
					id, exists = known[row.PartNumber]
				}
				if exists {
					p.ID = id
					if _, err := u.store.Parts().Update(txCtx, p); err != nil {
						return err
					}
					updated++
					continue
				}
				saved, err := u.store.Parts().Create(txCtx, p)
				if err != nil {
					return err
				}
				written[row.PartNumber] = saved.ID
				created++
			}
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("chunk %d of %d: %w", i+1, total, err)
		}

		for number, id := range written {
			known[number] = id
		}
		res.Created += created
		res.Updated += updated
		res.Chunks++
		if progress != nil {
			progress(i+1, total, len(chunk))
		}
	}
	return res, nil
}

func (u *PartUpserter) prefetch(ctx context.Context, rows []Row) (map[string]uint, error) {
	seen := make(map[string]struct{}, len(rows))
	numbers := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.PartNumber]; ok {
			continue
		}
		seen[r.PartNumber] = struct{}{}
		numbers = append(numbers, r.PartNumber)
	}

	existing, err := u.store.Parts().FindByPartNumbers(ctx, numbers)
	if err != nil {
		return nil, err
	}
	known := make(map[string]uint, len(existing))
	for _, p := range existing {
		known[p.PartNumber] = p.ID
	}
	return known, nil
}
