package types

import (
	_ "embed"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/emerge-lang/compiler-sub000/internal/source"
)

//go:embed intrinsics.yaml
var defaultIntrinsics []byte

type catalogFile struct {
	DefaultInteger string        `yaml:"defaultInteger"`
	Types          []catalogType `yaml:"types"`
}

type catalogType struct {
	Name       string             `yaml:"name"`
	Kind       string             `yaml:"kind"`
	Value      bool               `yaml:"value"`
	Min        string             `yaml:"min"`
	Max        string             `yaml:"max"`
	Floating   bool               `yaml:"floating"`
	Parameters []catalogParameter `yaml:"parameters"`
	Supertypes []string           `yaml:"supertypes"`
}

type catalogParameter struct {
	Name     string `yaml:"name"`
	Variance string `yaml:"variance"`
}

// Catalog holds the intrinsic base types.
type Catalog struct {
	Any, Nothing, Unit, Bool, String, Array, Throwable *BaseType
	DefaultInteger                                     *BaseType

	bases  []*BaseType
	byName map[string]*BaseType
}

// DefaultCatalog parses the embedded intrinsic catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultIntrinsics)
	if err != nil {
		panic(errors.Wrap(err, "embedded intrinsic catalog"))
	}
	return c
}

// LoadCatalog reads an intrinsic catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read intrinsic catalog %s", path)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Wrapf(err, "intrinsic catalog %s", path)
	}
	return c, nil
}

// ParseCatalog decodes a YAML intrinsic catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	c := &Catalog{byName: make(map[string]*BaseType)}
	for _, t := range file.Types {
		if _, dup := c.byName[t.Name]; dup {
			return nil, errors.Errorf("type %s declared twice", t.Name)
		}
		base, err := t.base()
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", t.Name)
		}
		c.bases = append(c.bases, base)
		c.byName[base.Name] = base
	}
	for i, t := range file.Types {
		for _, name := range t.Supertypes {
			super, ok := c.byName[name]
			if !ok {
				return nil, errors.Errorf("type %s: unknown supertype %s", t.Name, name)
			}
			c.bases[i].Supertypes = append(c.bases[i].Supertypes, super.Ref(ReadOnly))
		}
	}

	required := []struct {
		name TYPE_NAME
		dst  **BaseType
	}{
		{TYPE_ANY, &c.Any},
		{TYPE_NOTHING, &c.Nothing},
		{TYPE_UNIT, &c.Unit},
		{TYPE_BOOL, &c.Bool},
		{TYPE_STRING, &c.String},
		{TYPE_ARRAY, &c.Array},
		{TYPE_THROWABLE, &c.Throwable},
	}
	for _, r := range required {
		base, ok := c.byName[string(r.name)]
		if !ok {
			return nil, errors.Errorf("intrinsic type %s is missing", r.name)
		}
		*r.dst = base
	}
	if c.Any.Kind != Top || c.Nothing.Kind != Bottom {
		return nil, errors.New("Any must be the top type and Nothing the bottom type")
	}
	if len(c.Array.Parameters) != 1 {
		return nil, errors.New("Array must declare exactly one type parameter")
	}

	name := file.DefaultInteger
	if name == "" {
		name = string(TYPE_S32)
	}
	if err := c.SetDefaultInteger(name); err != nil {
		return nil, err
	}
	return c, nil
}

func (t catalogType) base() (*BaseType, error) {
	base := &BaseType{
		Name:      t.Name,
		ValueType: t.Value,
		Floating:  t.Floating,
		Location:  source.Synthetic("intrinsic " + t.Name),
	}
	switch t.Kind {
	case "", "class":
		base.Kind = Class
	case "interface":
		base.Kind = Interface
	case "top":
		base.Kind = Top
	case "bottom":
		base.Kind = Bottom
	default:
		return nil, errors.Errorf("unknown kind %q", t.Kind)
	}

	if t.Min != "" || t.Max != "" {
		lo, ok := new(big.Int).SetString(t.Min, 10)
		if !ok {
			return nil, errors.Errorf("invalid min %q", t.Min)
		}
		hi, ok := new(big.Int).SetString(t.Max, 10)
		if !ok {
			return nil, errors.Errorf("invalid max %q", t.Max)
		}
		if lo.Cmp(hi) > 0 {
			return nil, errors.Errorf("min %s exceeds max %s", lo, hi)
		}
		base.Min, base.Max = lo, hi
	}

	for _, p := range t.Parameters {
		param := &TypeParameter{Name: p.Name, Location: base.Location}
		switch p.Variance {
		case "":
		case "in":
			param.Variance = In
		case "out":
			param.Variance = Out
		default:
			return nil, errors.Errorf("parameter %s: unknown variance %q", p.Name, p.Variance)
		}
		base.Parameters = append(base.Parameters, param)
	}
	return base, nil
}

// SetDefaultInteger chooses the type integer literals get without context.
func (c *Catalog) SetDefaultInteger(name string) error {
	base, ok := c.byName[name]
	if !ok || !base.IsInteger() {
		return errors.Errorf("default integer type %s is not an intrinsic integer type", name)
	}
	c.DefaultInteger = base
	return nil
}

// Lookup finds an intrinsic base type by name.
func (c *Catalog) Lookup(name string) (*BaseType, bool) {
	b, ok := c.byName[name]
	return b, ok
}

// Bases lists all intrinsic types in catalog order.
func (c *Catalog) Bases() []*BaseType {
	return c.bases
}

// Integers lists the integer types in catalog order.
func (c *Catalog) Integers() []*BaseType {
	var result []*BaseType
	for _, b := range c.bases {
		if b.IsInteger() {
			result = append(result, b)
		}
	}
	return result
}

// Numerics lists integer and floating point types in catalog order.
func (c *Catalog) Numerics() []*BaseType {
	var result []*BaseType
	for _, b := range c.bases {
		if b.IsInteger() || b.Floating {
			result = append(result, b)
		}
	}
	return result
}

// IntegerFor picks the type of an integer literal without context: the default
// integer type if it holds v, otherwise the first signed then unsigned type that does.
func (c *Catalog) IntegerFor(v *big.Int) *BaseType {
	if c.DefaultInteger.Holds(v) {
		return c.DefaultInteger
	}
	var unsigned *BaseType
	for _, b := range c.Integers() {
		if !b.Holds(v) {
			continue
		}
		if b.Min.Sign() < 0 {
			return b
		}
		if unsigned == nil {
			unsigned = b
		}
	}
	return unsigned
}

func (c *Catalog) AnyRef() *RootRef     { return c.Any.Ref(ReadOnly) }
func (c *Catalog) NothingRef() *RootRef { return c.Nothing.Ref(Immutable) }
func (c *Catalog) UnitRef() *RootRef    { return c.Unit.Ref(Immutable) }
func (c *Catalog) BoolRef() *RootRef    { return c.Bool.Ref(Immutable) }
func (c *Catalog) StringRef() *RootRef  { return c.String.Ref(Immutable) }

// NullRef is the type of the null literal.
func (c *Catalog) NullRef() *RootRef {
	return &RootRef{Base: c.Nothing, Mut: Immutable, Nullable: true}
}

// ThrowableRef is the type a thrown value must conform to.
func (c *Catalog) ThrowableRef() *RootRef {
	return c.Throwable.Ref(ReadOnly)
}

// ArrayOf references an array of element.
func (c *Catalog) ArrayOf(element Type, mut Mutability) *RootRef {
	return c.Array.Ref(mut, element)
}

// IsUnit reports whether t is the Unit type.
func (c *Catalog) IsUnit(t Type) bool {
	r, ok := t.(*RootRef)
	return ok && r.Base == c.Unit
}

// IsNothing reports whether t is the non-nullable bottom type.
func (c *Catalog) IsNothing(t Type) bool {
	r, ok := t.(*RootRef)
	return ok && r.Base == c.Nothing && !r.Nullable
}

// Finalize replaces an untyped integer by its default integer type.
func (c *Catalog) Finalize(t Type) Type {
	if u, ok := t.(*UntypedInteger); ok {
		if b := c.IntegerFor(u.Value); b != nil {
			return b.Ref(Immutable)
		}
		return c.DefaultInteger.Ref(Immutable)
	}
	return t
}

// CommonSupertype is the closest type both a and b are assignable to.
func (c *Catalog) CommonSupertype(a, b Type) Type {
	a, b = c.Finalize(a), c.Finalize(b)
	nullable := a.IsNullable() || b.IsNullable()
	an, bn := a.WithNullability(nullable), b.WithNullability(nullable)
	if IsAssignableTo(an, bn) {
		return bn
	}
	if IsAssignableTo(bn, an) {
		return an
	}

	mut := a.Mutability().Union(b.Mutability())
	if ar, ok := an.(*RootRef); ok {
		for _, s := range Supertypes(ar) {
			if s.Base.Kind == Top {
				continue
			}
			candidate := &RootRef{Base: s.Base, Args: s.Args, Mut: mut, Nullable: nullable}
			if IsAssignableTo(an.WithMutability(mut), candidate) && IsAssignableTo(bn.WithMutability(mut), candidate) {
				return candidate
			}
		}
	}
	return &RootRef{Base: c.Any, Mut: mut, Nullable: nullable}
}

// IsReferenceCounted reports whether values of t live on the heap and are counted.
func IsReferenceCounted(t Type) bool {
	switch v := t.(type) {
	case *RootRef:
		return !v.Base.ValueType && v.Base.Kind != Bottom
	case *VariableRef:
		return true
	}
	return false
}
