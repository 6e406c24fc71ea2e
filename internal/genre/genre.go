// Package genre holds the static TMDb movie genre table.
package genre

// Genre is a single (id, name) pair.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Table is an immutable lookup from genre id to name.
type Table struct {
	byID  map[int]string
	order []Genre
}

var movieGenres = []Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Family"},
	{ID: 14, Name: "Fantasy"},
	{ID: 36, Name: "History"},
	{ID: 27, Name: "Horror"},
	{ID: 10402, Name: "Music"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "Science Fiction"},
	{ID: 10770, Name: "TV Movie"},
	{ID: 53, Name: "Thriller"},
	{ID: 10752, Name: "War"},
	{ID: 37, Name: "Western"},
}

var defaultTable = New(movieGenres)

// Default returns the shared TMDb movie genre table.
func Default() *Table {
	return defaultTable
}

// New builds a table from pairs. If an id repeats, the first name wins.
func New(genres []Genre) *Table {
	t := &Table{
		byID:  make(map[int]string, len(genres)),
		order: make([]Genre, 0, len(genres)),
	}
	for _, g := range genres {
		if _, dup := t.byID[g.ID]; dup {
			continue
		}
		t.byID[g.ID] = g.Name
		t.order = append(t.order, g)
	}
	return t
}

// Name returns the genre name for id.
func (t *Table) Name(id int) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.byID[id]
	return name, ok
}

// Len returns the number of genres in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// All returns a copy of the table's pairs in declaration order.
func (t *Table) All() []Genre {
	if t == nil {
		return nil
	}
	out := make([]Genre, len(t.order))
	copy(out, t.order)
	return out
}
