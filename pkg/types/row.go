// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NotFoundMessage is the display form of a lookup that reached the service
// but produced no SMILES value.
const NotFoundMessage = "CAS number not found or SMILES not available"

// networkErrorPrefix precedes the failure detail of a NetworkError result.
const networkErrorPrefix = "Error fetching data: "

// ResultKind tags the outcome of a single CAS lookup.
type ResultKind string

const (
	ResultNone         ResultKind = ""
	ResultSMILES       ResultKind = "smiles"
	ResultNotFound     ResultKind = "not_found"
	ResultNetworkError ResultKind = "network_error"
)

// Result is the outcome of resolving one CAS number. Exactly one of SMILES
// or Detail is meaningful, depending on Kind.
type Result struct {
	Kind ResultKind `json:"kind" yaml:"kind"`

	// SMILES is set when Kind is ResultSMILES.
	SMILES string `json:"smiles,omitempty" yaml:"smiles,omitempty"`

	// Detail describes the failure when Kind is ResultNetworkError.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Found returns a successful result carrying smiles.
func Found(smiles string) Result {
	return Result{Kind: ResultSMILES, SMILES: smiles}
}

// NotFound returns the result for a CAS number with no SMILES value.
func NotFound() Result {
	return Result{Kind: ResultNotFound}
}

// NetworkError returns a failed result carrying detail.
func NetworkError(detail string) Result {
	return Result{Kind: ResultNetworkError, Detail: detail}
}

// String returns the text written to the output file for this result.
func (r Result) String() string {
	switch r.Kind {
	case ResultSMILES:
		return r.SMILES
	case ResultNotFound:
		return NotFoundMessage
	case ResultNetworkError:
		return networkErrorPrefix + r.Detail
	default:
		return ""
	}
}

// Row is one compound: the name and CAS number read from the input file and
// the lookup result added during resolution.
type Row struct {
	Name   string `json:"name" yaml:"name"`
	CAS    string `json:"cas" yaml:"cas"`
	Result Result `json:"result" yaml:"result"`
}

// Table is an ordered sequence of rows, unique by CAS number.
type Table struct {
	Rows []Row

	seen map[string]struct{}
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{seen: make(map[string]struct{})}
}

// Add appends row unless a row with the same CAS is already present. It
// reports whether the row was kept.
func (t *Table) Add(row Row) bool {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	if _, dup := t.seen[row.CAS]; dup {
		return false
	}
	t.seen[row.CAS] = struct{}{}
	t.Rows = append(t.Rows, row)
	return true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
