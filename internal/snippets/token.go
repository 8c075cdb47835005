package snippets

// Kind identifies the placeholder form of a Token.
type Kind int

const (
	// Expansion is the `$%%{...}` form.
	Expansion Kind = iota + 1
	// Reference is the `$%{...}` form.
	Reference
)

func (k Kind) String() string {
	switch k {
	case Expansion:
		return "expansion"
	case Reference:
		return "reference"
	default:
		return "unknown"
	}
}

// Token is one placeholder found in a text. Start and End are byte offsets
// of the whole placeholder, delimiters included.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Line  int
	Raw   string

	// Invocation is set for expansions.
	Invocation Invocation
	// Chain is the dotted key chain of a reference.
	Chain string
}

// Invocation describes a single snippet expansion.
type Invocation struct {
	Name     string
	Lookup   string
	Metadata string
	Args     Params
	Content  []byte
}
