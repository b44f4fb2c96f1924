package enum

// Category is the closed set of routing categories. Unknown values decode to
// CategoryGeneral so routing always has a destination chain to walk.
type Category string

const (
	CategorySupport Category = "support"
	CategoryBilling Category = "billing"
	CategorySales   Category = "sales"
	CategoryGeneral Category = "general"
)

func (c Category) String() string {
	return string(c)
}

func DecodeCategory(s string) Category {
	switch s {
	case "support":
		return CategorySupport
	case "billing":
		return CategoryBilling
	case "sales":
		return CategorySales
	default:
		return CategoryGeneral
	}
}

func Categories() []Category {
	return []Category{CategorySupport, CategoryBilling, CategorySales, CategoryGeneral}
}
