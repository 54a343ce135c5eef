package viewmodels

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type SubCategory struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	CategoryID uint      `json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
}

// Specification values are null when absent, not applicable or not numeric.
type Specification struct {
	ID             uint     `json:"id"`
	PartID         uint     `json:"partId"`
	Vdss           *float64 `json:"vdss"`
	Vgs            *float64 `json:"vgs"`
	VthMin         *float64 `json:"vthMin"`
	VthMax         *float64 `json:"vthMax"`
	IDAt25         *float64 `json:"idAt25"`
	VthMaxValue    *float64 `json:"vthMaxValue"`
	Ron4_5V        *float64 `json:"ron4_5v"`
	Ron10V         *float64 `json:"ron10v"`
	HasVdss        bool     `json:"hasVdss"`
	HasVgs         bool     `json:"hasVgs"`
	HasVthMin      bool     `json:"hasVthMin"`
	HasVthMax      bool     `json:"hasVthMax"`
	HasIDAt25      bool     `json:"hasIdAt25"`
	HasVthMaxValue bool     `json:"hasVthMaxValue"`
	HasRon4_5V     bool     `json:"hasRon4_5v"`
	HasRon10V      bool     `json:"hasRon10v"`
}

type Product struct {
	ID             uint           `json:"id"`
	PartNumber     string         `json:"partNumber"`
	DatasheetLink  *string        `json:"datasheetLink"`
	SubCategoryID  uint           `json:"subCategoryId"`
	SubCategory    SubCategory    `json:"subCategory"`
	Specifications *Specification `json:"specifications"`
}

type CategoryTree struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	SubCategories []SubCategory `json:"subCategories"`
}
