package ast

// Transform rewrites a File. Implementations must not mutate the input
// file; they return a new File (sharing unchanged parts) instead.
type Transform interface {
	Name() string
	Transform(f *File) *File
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*File) *File
}

func (t TransformFunc) Name() string            { return t.N }
func (t TransformFunc) Transform(f *File) *File { return t.F(f) }

// Chain composes transforms left-to-right into a single Transform.
// Each transform receives the output of the previous one.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(f *File) *File {
			for _, t := range transforms {
				f = t.Transform(f)
			}
			return f
		},
	}
}

// WithEdits returns a shallow copy of f with edits appended. The input
// file and its edit slice are left untouched.
func WithEdits(f *File, edits ...Edit) *File {
	if len(edits) == 0 {
		return f
	}
	out := *f
	out.Edits = make([]Edit, 0, len(f.Edits)+len(edits))
	out.Edits = append(out.Edits, f.Edits...)
	out.Edits = append(out.Edits, edits...)
	return &out
}
