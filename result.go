package agon

// Format names the four representations AGON can produce (spec §3).
type Format string

// Supported formats, in the tie-break order used by the selector
// (spec §4.6): json < rows < columns < struct.
const (
	FormatJSON    Format = "json"
	FormatRows    Format = "rows"
	FormatColumns Format = "columns"
	FormatStruct  Format = "struct"
	// FormatAuto requests the adaptive selector (spec §6).
	FormatAuto Format = "auto"
)

var formatOrder = map[Format]int{
	FormatJSON:    0,
	FormatRows:    1,
	FormatColumns: 2,
	FormatStruct:  3,
}

// EncodingResult wraps an encoded payload with its format and an
// optional LLM-facing header hint (spec §3).
type EncodingResult struct {
	Format Format
	Text   string
	Header string // empty when the format carries no separate header hint
}

// Len returns len(r.Text).
func (r EncodingResult) Len() int { return len(r.Text) }

// String returns r.Text, satisfying fmt.Stringer.
func (r EncodingResult) String() string { return r.Text }

// WithHeader returns r.Text prefixed by "r.Header\n\n" when Header is
// set, or r.Text unchanged otherwise.
func (r EncodingResult) WithHeader() string {
	if r.Header == "" {
		return r.Text
	}
	return r.Header + "\n\n" + r.Text
}

// Hint is a short, LLM-facing description of the AGON format family,
// intended to be prepended to a system prompt for a model that must
// itself emit AGON rather than only consume it (see SPEC_FULL.md's
// "Supplemented features"; original_source/src/agon/core.py exposes the
// equivalent AGON.hint()).
func Hint() string {
	return "AGON: self-describing JSON alternative. Headers: '@AGON rows'," +
		" '@AGON columns', '@AGON struct'. name[N]{k1,k2}: tabular array." +
		" name[N]: v1,v2 inline array. Unlabeled lines continue the" +
		" previous key at deeper indent. No header means plain JSON."
}
