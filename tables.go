package cadastre

import "strconv"

// ColumnKind is the value type of a table column.
type ColumnKind int

const (
	IntColumn ColumnKind = iota
	FloatColumn
	StringColumn
)

// Column is one named column of a result table. Exactly one of the value slices
// is set, matching Kind.
type Column struct {
	Name    string
	Kind    ColumnKind
	Ints    []int
	Floats  []float64
	Strings []string
}

// Table is a column-oriented result table. Rows keep insertion order.
type Table interface {
	Name() string
	Header() []string
	Len() int
	Row(i int) []string
	Columns() []Column
}

// BoundaryTable holds one row per boundary segment.
type BoundaryTable struct {
	From   []int
	To     []int
	Desc   []string
	Az     []string
	Length []float64
}

func (t *BoundaryTable) Name() string     { return "Borders" }
func (t *BoundaryTable) Header() []string { return []string{"From", "To", "Desc", "Az", "Len"} }
func (t *BoundaryTable) Len() int         { return len(t.From) }

func (t *BoundaryTable) Row(i int) []string {
	return []string{
		strconv.Itoa(t.From[i]),
		strconv.Itoa(t.To[i]),
		t.Desc[i],
		t.Az[i],
		formatNumber(t.Length[i]),
	}
}

func (t *BoundaryTable) Columns() []Column {
	return []Column{
		{Name: "From", Kind: IntColumn, Ints: t.From},
		{Name: "To", Kind: IntColumn, Ints: t.To},
		{Name: "Desc", Kind: StringColumn, Strings: t.Desc},
		{Name: "Az", Kind: StringColumn, Strings: t.Az},
		{Name: "Len", Kind: FloatColumn, Floats: t.Length},
	}
}

func (t *BoundaryTable) appendSegments(segs []Segment) {
	for _, s := range segs {
		t.From = append(t.From, s.From)
		t.To = append(t.To, s.To)
		t.Desc = append(t.Desc, s.Description)
		t.Az = append(t.Az, s.AzimuthDMS)
		t.Length = append(t.Length, s.Length)
	}
}

// CoordinateRow is one projected point.
type CoordinateRow struct {
	Name   string
	X, Y   string  // latitude and longitude in DMS
	X1, Y1 float64 // northing and easting in the display CRS
}

// CoordinateTable holds one row per projected point.
type CoordinateTable struct {
	Nm []string
	X  []string
	Y  []string
	X1 []float64
	Y1 []float64
}

func (t *CoordinateTable) Name() string     { return "Coordinates" }
func (t *CoordinateTable) Header() []string { return []string{"Nm", "X", "Y", "X1", "Y1"} }
func (t *CoordinateTable) Len() int         { return len(t.Nm) }

func (t *CoordinateTable) Row(i int) []string {
	return []string{t.Nm[i], t.X[i], t.Y[i], formatNumber(t.X1[i]), formatNumber(t.Y1[i])}
}

func (t *CoordinateTable) Columns() []Column {
	return []Column{
		{Name: "Nm", Kind: StringColumn, Strings: t.Nm},
		{Name: "X", Kind: StringColumn, Strings: t.X},
		{Name: "Y", Kind: StringColumn, Strings: t.Y},
		{Name: "X1", Kind: FloatColumn, Floats: t.X1},
		{Name: "Y1", Kind: FloatColumn, Floats: t.Y1},
	}
}

func (t *CoordinateTable) appendRows(rows []CoordinateRow) {
	for _, r := range rows {
		t.Nm = append(t.Nm, r.Name)
		t.X = append(t.X, r.X)
		t.Y = append(t.Y, r.Y)
		t.X1 = append(t.X1, r.X1)
		t.Y1 = append(t.Y1, r.Y1)
	}
}

// LandmarkRow is one benchmark-to-landmark guide.
type LandmarkRow struct {
	Name   string
	Az     string
	Length float64
}

// LandmarkTable holds one row per landmark guide.
type LandmarkTable struct {
	Nm     []string
	Az     []string
	Length []float64
}

func (t *LandmarkTable) Name() string     { return "Landmarks" }
func (t *LandmarkTable) Header() []string { return []string{"Nm", "Az", "Len"} }
func (t *LandmarkTable) Len() int         { return len(t.Nm) }

func (t *LandmarkTable) Row(i int) []string {
	return []string{t.Nm[i], t.Az[i], formatNumber(t.Length[i])}
}

func (t *LandmarkTable) Columns() []Column {
	return []Column{
		{Name: "Nm", Kind: StringColumn, Strings: t.Nm},
		{Name: "Az", Kind: StringColumn, Strings: t.Az},
		{Name: "Len", Kind: FloatColumn, Floats: t.Length},
	}
}

func (t *LandmarkTable) appendRows(rows []LandmarkRow) {
	for _, r := range rows {
		t.Nm = append(t.Nm, r.Name)
		t.Az = append(t.Az, r.Az)
		t.Length = append(t.Length, r.Length)
	}
}

// Tables owns the accumulated results of a Handler. Runs only ever append;
// Reset empties all three tables.
type Tables struct {
	Boundary    BoundaryTable
	Coordinates CoordinateTable
	Landmarks   LandmarkTable
}

// Reset empties every table.
func (t *Tables) Reset() {
	t.Boundary = BoundaryTable{}
	t.Coordinates = CoordinateTable{}
	t.Landmarks = LandmarkTable{}
}

// All returns the tables in export order.
func (t *Tables) All() []Table {
	return []Table{&t.Boundary, &t.Coordinates, &t.Landmarks}
}
