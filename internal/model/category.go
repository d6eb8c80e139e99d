package model

// Category is a fixed catalog section identified by its slug.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Categories is the enumerated category set, in display order.
var Categories = []Category{
	{Name: "Data Structures & Algorithms", Slug: "dsa"},
	{Name: "Operating Systems", Slug: "os"},
	{Name: "Database Management", Slug: "dbms"},
	{Name: "Computer Networks", Slug: "cn"},
	{Name: "Object-Oriented Programming", Slug: "oop"},
	{Name: "AI & Machine Learning", Slug: "ai-ml"},
	{Name: "Miscellaneous", Slug: "misc"},
}

// CategoryBySlug returns the category for slug and whether it exists.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// IsCategory reports whether slug names a known category.
func IsCategory(slug string) bool {
	_, ok := CategoryBySlug(slug)
	return ok
}
