package resources

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-resource-client/resourceclient"
)

// OpName names an operation on a resource.
type OpName string

const (
	OpList           OpName = "list"
	OpGet            OpName = "get"
	OpCreate         OpName = "create"
	OpUpdate         OpName = "update"
	OpDelete         OpName = "delete"
	OpAvatar         OpName = "avatar"
	OpChangePassword OpName = "change_password"
	OpLogin          OpName = "login"
	OpForgotPassword OpName = "forgot_password"
	OpVerifyOTP      OpName = "verify_otp"
	OpResetPassword  OpName = "reset_password"
)

// IDPlaceholder is substituted with the record id when an operation is expanded.
const IDPlaceholder = "{id}"

// Cache tags provided by the built-in resources.
const (
	TagAdmin        resourceclient.Tag = "admin"
	TagProfile      resourceclient.Tag = "profile"
	TagBlog         resourceclient.Tag = "blog"
	TagPrivacy      resourceclient.Tag = "privacy"
	TagTerms        resourceclient.Tag = "terms"
	TagAbout        resourceclient.Tag = "about"
	TagUser         resourceclient.Tag = "user"
	TagAppointments resourceclient.Tag = "appointments"
)

// Operation is one endpoint of a resource.
type Operation struct {
	Method      string
	Path        string
	Invalidates []resourceclient.Tag
	Multipart   bool
}

func (o Operation) isRead() bool {
	return o.Method == http.MethodGet
}

// Expand substitutes id into the path.
func (o Operation) Expand(id string) (string, error) {
	if !strings.Contains(o.Path, IDPlaceholder) {
		return o.Path, nil
	}
	if id == "" {
		return "", fmt.Errorf("path %s requires an id", o.Path)
	}
	return strings.ReplaceAll(o.Path, IDPlaceholder, url.PathEscape(id)), nil
}

// Definition describes a resource: the tag its reads provide and its endpoints.
type Definition struct {
	Name       string
	Provides   resourceclient.Tag
	Operations map[OpName]Operation
}

// DefinitionError reports a resource definition that cannot be used.
type DefinitionError struct {
	Resource string
	Op       OpName
	Message  string
}

func (e *DefinitionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("resource %s: operation %s: %s", e.Resource, e.Op, e.Message)
	}
	return fmt.Sprintf("resource %s: %s", e.Resource, e.Message)
}

// Registry holds validated definitions by name.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry validates defs as a set and returns the registry. Every tag a
// write invalidates must be provided by some definition in the set.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}

	var errs []error
	for _, def := range defs {
		if def.Name == "" {
			errs = append(errs, &DefinitionError{Resource: "<unnamed>", Message: "name is required"})
			continue
		}
		if _, dup := r.defs[def.Name]; dup {
			errs = append(errs, &DefinitionError{Resource: def.Name, Message: "duplicate definition"})
			continue
		}
		r.defs[def.Name] = def
	}

	errs = append(errs, r.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on invalid definitions.
func MustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) validate() []error {
	provided := make(map[resourceclient.Tag]bool)
	for _, def := range r.defs {
		if def.Provides != "" {
			provided[def.Provides.Normalize()] = true
		}
	}

	var errs []error
	for _, name := range r.Names() {
		def := r.defs[name]
		if len(def.Operations) == 0 {
			errs = append(errs, &DefinitionError{Resource: name, Message: "no operations"})
		}

		for _, op := range sortedOps(def.Operations) {
			o := def.Operations[op]
			fail := func(msg string, args ...any) {
				errs = append(errs, &DefinitionError{Resource: name, Op: op, Message: fmt.Sprintf(msg, args...)})
			}

			if o.Method == "" {
				fail("method is required")
			}
			if o.Path == "" || !strings.HasPrefix(o.Path, "/") {
				fail("path must start with /")
			}
			if (op == OpList || op == OpGet) && !o.isRead() {
				fail("%s must use GET, got %s", op, o.Method)
			}
			if o.isRead() {
				if len(o.Invalidates) > 0 {
					fail("GET operations cannot invalidate tags")
				}
				if def.Provides == "" {
					fail("GET operation on a resource that provides no tag")
				}
				if o.Multipart {
					fail("GET operations cannot be multipart")
				}
			}
			for _, tag := range o.Invalidates {
				if !provided[tag.Normalize()] {
					fail("invalidates unknown tag %q", tag)
				}
			}
		}
	}
	return errs
}

// Definition returns the named definition.
func (r *Registry) Definition(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown resource %q", name)
	}
	return def, nil
}

// Names returns the registered resource names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query builds the cached read for a GET operation.
func (r *Registry) Query(name string, op OpName, params url.Values) (resourceclient.Query, error) {
	def, o, err := r.operation(name, op)
	if err != nil {
		return resourceclient.Query{}, err
	}
	if !o.isRead() {
		return resourceclient.Query{}, &DefinitionError{Resource: name, Op: op, Message: "not a read operation"}
	}
	return resourceclient.Query{Tag: def.Provides, Path: o.Path, Params: params}, nil
}

// Mutation builds the write for a non-GET operation, expanding id into the path.
func (r *Registry) Mutation(name string, op OpName, id string) (resourceclient.Mutation, error) {
	_, o, err := r.operation(name, op)
	if err != nil {
		return resourceclient.Mutation{}, err
	}
	if o.isRead() {
		return resourceclient.Mutation{}, &DefinitionError{Resource: name, Op: op, Message: "not a write operation"}
	}
	path, err := o.Expand(id)
	if err != nil {
		return resourceclient.Mutation{}, &DefinitionError{Resource: name, Op: op, Message: err.Error()}
	}
	return resourceclient.Mutation{
		Method:      o.Method,
		Path:        path,
		Invalidates: append([]resourceclient.Tag(nil), o.Invalidates...),
	}, nil
}

func (r *Registry) operation(name string, op OpName) (Definition, Operation, error) {
	def, err := r.Definition(name)
	if err != nil {
		return Definition{}, Operation{}, err
	}
	o, ok := def.Operations[op]
	if !ok {
		return Definition{}, Operation{}, &DefinitionError{Resource: name, Op: op, Message: "operation not defined"}
	}
	return def, o, nil
}

func sortedOps(ops map[OpName]Operation) []OpName {
	names := make([]OpName, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
