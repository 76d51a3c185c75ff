package types

// IsAssignableTo reports whether a value of type src can be stored where dst
// is required. Both types must be free of unresolved variables unless they
// refer to the same parameter.
func IsAssignableTo(src, dst Type) bool {
	if src.IsNullable() && !dst.IsNullable() {
		return false
	}

	switch s := src.(type) {
	case *UntypedInteger:
		d, ok := dst.(*RootRef)
		return ok && (d.Base.Kind == Top || d.Base.Holds(s.Value))

	case *VariableRef:
		if d, ok := dst.(*VariableRef); ok && d.Param == s.Param {
			return true
		}
		bound := s.UpperBound()
		if bound == nil {
			d, ok := dst.(*RootRef)
			return ok && d.Base.Kind == Top
		}
		return IsAssignableTo(bound, dst)

	case *RootRef:
		if s.Base.Kind == Bottom {
			return true
		}
		d, ok := dst.(*RootRef)
		if !ok {
			return false
		}
		if !s.Base.ValueType && !s.Mut.IsAssignableTo(d.Mut) {
			return false
		}
		if d.Base.Kind == Top {
			return true
		}
		view := AsSupertype(s, d.Base)
		if view == nil {
			return false
		}
		return argumentsConform(view, d)
	}
	return false
}

func argumentsConform(view, dst *RootRef) bool {
	for i, p := range dst.Base.Parameters {
		if i >= len(view.Args) || i >= len(dst.Args) {
			break
		}
		a, b := view.Args[i], dst.Args[i]
		switch p.Variance {
		case Out:
			if !IsAssignableTo(a, b) {
				return false
			}
		case In:
			if !IsAssignableTo(b, a) {
				return false
			}
		default:
			if !a.Equals(b) {
				return false
			}
		}
	}
	return true
}

// AsSupertype views ref as a reference to base, translating the type arguments
// along the supertype chain. Returns nil when base is not a supertype.
func AsSupertype(ref *RootRef, base *BaseType) *RootRef {
	return asSupertype(ref, base, map[*BaseType]bool{})
}

func asSupertype(ref *RootRef, base *BaseType, visited map[*BaseType]bool) *RootRef {
	if ref.Base == base {
		return ref
	}
	if visited[ref.Base] {
		return nil
	}
	visited[ref.Base] = true
	for _, s := range ref.Base.Supertypes {
		translated := Substitute(s, Bind(ref.Base.Parameters, ref.Args)).(*RootRef)
		translated = &RootRef{Base: translated.Base, Args: translated.Args, Mut: ref.Mut, Nullable: ref.Nullable}
		if found := asSupertype(translated, base, visited); found != nil {
			return found
		}
	}
	return nil
}

// Supertypes lists all transitive supertypes of ref, nearest first.
func Supertypes(ref *RootRef) []*RootRef {
	var result []*RootRef
	seen := map[*BaseType]bool{ref.Base: true}
	queue := []*RootRef{ref}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, s := range current.Base.Supertypes {
			if seen[s.Base] {
				continue
			}
			seen[s.Base] = true
			translated := Substitute(s, Bind(current.Base.Parameters, current.Args)).(*RootRef)
			translated = &RootRef{Base: translated.Base, Args: translated.Args, Mut: ref.Mut, Nullable: ref.Nullable}
			result = append(result, translated)
			queue = append(queue, translated)
		}
	}
	return result
}

// Bind pairs parameters with arguments. Missing arguments stay unbound.
func Bind(params []*TypeParameter, args []Type) map[*TypeParameter]Type {
	bindings := make(map[*TypeParameter]Type, len(params))
	for i, p := range params {
		if i < len(args) && args[i] != nil {
			bindings[p] = args[i]
		}
	}
	return bindings
}

// Substitute replaces variables bound in bindings.
func Substitute(t Type, bindings map[*TypeParameter]Type) Type {
	switch v := t.(type) {
	case *VariableRef:
		b, ok := bindings[v.Param]
		if !ok || b == nil {
			return v
		}
		if v.Nullable {
			return b.WithNullability(true)
		}
		return b
	case *RootRef:
		if len(v.Args) == 0 {
			return v
		}
		args := make([]Type, len(v.Args))
		changed := false
		for i, a := range v.Args {
			args[i] = Substitute(a, bindings)
			changed = changed || args[i] != a
		}
		if !changed {
			return v
		}
		return &RootRef{Base: v.Base, Args: args, Mut: v.Mut, Nullable: v.Nullable}
	}
	return t
}

// ContainsVariables reports whether t mentions any of params.
func ContainsVariables(t Type, params []*TypeParameter) bool {
	switch v := t.(type) {
	case *VariableRef:
		for _, p := range params {
			if p == v.Param {
				return true
			}
		}
	case *RootRef:
		for _, a := range v.Args {
			if ContainsVariables(a, params) {
				return true
			}
		}
	}
	return false
}

// IsDisjoint reports whether no value can be of both types a and b.
func IsDisjoint(a, b Type) bool {
	if a.IsNullable() && b.IsNullable() {
		return false
	}
	if v, ok := a.(*VariableRef); ok {
		if v.Param.Bound == nil {
			return false
		}
		return IsDisjoint(v.Param.Bound, b)
	}
	if v, ok := b.(*VariableRef); ok {
		if v.Param.Bound == nil {
			return false
		}
		return IsDisjoint(a, v.Param.Bound)
	}

	ar, aok := a.(*RootRef)
	br, bok := b.(*RootRef)
	if !aok || !bok {
		return false
	}
	if ar.Base.Kind == Top || br.Base.Kind == Top || ar.Base.Kind == Bottom || br.Base.Kind == Bottom {
		return false
	}
	if ar.Base == br.Base {
		// variant parameters share Nothing as a common argument
		for i, p := range ar.Base.Parameters {
			if p.Variance != Invariant || i >= len(ar.Args) || i >= len(br.Args) {
				continue
			}
			if IsDisjoint(ar.Args[i], br.Args[i]) {
				return true
			}
		}
		return false
	}
	if ar.Base.IsSubtypeOf(br.Base) || br.Base.IsSubtypeOf(ar.Base) {
		return false
	}
	// classes are final: a common subtype would have to be the class itself
	return ar.Base.Kind == Class || br.Base.Kind == Class
}
