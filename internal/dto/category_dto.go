package dto

type SubcategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   *string               `json:"description,omitempty"`
	Subcategories []SubcategoryResponse `json:"subcategories"`
}
