package repositories

// Sortable columns keyed by the names accepted in the query string.
var (
	StudentSortColumns = map[string]string{
		"id":        "id",
		"firstName": "first_name",
		"lastName":  "last_name",
		"email":     "email",
	}
	CourseSortColumns = map[string]string{
		"id":           "id",
		"title":        "title",
		"maxCapacity":  "max_capacity",
		"max_capacity": "max_capacity",
		"createdAt":    "created_at",
	}
)

// OrderClause maps params.SortBy through allowed and appends a tiebreaker on id.
// Unknown sort keys fall back to fallback so user input never reaches SQL.
func OrderClause(params ListParams, allowed map[string]string, fallback string) []string {
	column, ok := allowed[params.SortBy]
	if !ok {
		column = fallback
	}
	dir := " ASC"
	if params.Descending {
		dir = " DESC"
	}
	if column == "id" {
		return []string{"id" + dir}
	}
	return []string{column + dir, "id ASC"}
}
