package resources

import (
	"context"
	"net/url"

	"github.com/goliatone/go-resource-client/resourceclient"
	"github.com/goliatone/go-resource-client/transport"
)

// service binds one definition to the resource client.
type service struct {
	client   *resourceclient.Client
	registry *Registry
	name     string
}

func (s service) Query(params url.Values) (resourceclient.Query, error) {
	def, err := s.registry.Definition(s.name)
	if err != nil {
		return resourceclient.Query{}, err
	}
	op := OpList
	if _, ok := def.Operations[OpList]; !ok {
		op = OpGet
	}
	return s.registry.Query(s.name, op, params)
}

// Subscribe keeps the resource's read refreshed after invalidation until
// the subscription is closed.
func (s service) Subscribe(params url.Values) (*resourceclient.Subscription, error) {
	q, err := s.Query(params)
	if err != nil {
		return nil, err
	}
	return s.client.Subscribe(q), nil
}

func (s service) read(ctx context.Context, params url.Values) (resourceclient.Result, error) {
	q, err := s.Query(params)
	if err != nil {
		return resourceclient.Result{}, err
	}
	return s.client.Read(ctx, q)
}

type writeArgs struct {
	id      string
	body    any
	form    *transport.Form
	headers map[string]string
}

func (s service) write(ctx context.Context, op OpName, args writeArgs) (resourceclient.Result, error) {
	m, err := s.registry.Mutation(s.name, op, args.id)
	if err != nil {
		return resourceclient.Result{}, err
	}
	m.Body = args.body
	m.Form = args.form
	m.Headers = args.headers
	return s.client.Write(ctx, m)
}

func readData[T any](ctx context.Context, s service, params url.Values) (T, error) {
	var zero T
	res, err := s.read(ctx, params)
	if err != nil {
		return zero, err
	}
	env, err := Decode[T](res.Body)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

func writeData[T any](ctx context.Context, s service, op OpName, args writeArgs) (Envelope[T], error) {
	res, err := s.write(ctx, op, args)
	if err != nil {
		return Envelope[T]{}, err
	}
	return Decode[T](res.Body)
}

// Services bundles the typed services over one client.
type Services struct {
	Admins       *Admins
	Profile      *Profile
	Blogs        *Blogs
	Privacy      *LegalDoc
	Terms        *LegalDoc
	About        *LegalDoc
	TeamMembers  *TeamMembers
	Appointments *Appointments
	Auth         *Auth
}

// NewServices builds every typed service. registry must contain the
// built-in resource names.
func NewServices(client *resourceclient.Client, registry *Registry) (*Services, error) {
	for _, name := range []string{
		ResourceAdmins, ResourceProfile, ResourceBlogs,
		ResourcePrivacy, ResourceTerms, ResourceAbout,
		ResourceTeamMembers, ResourceAppointments, ResourceAuth,
	} {
		if _, err := registry.Definition(name); err != nil {
			return nil, err
		}
	}

	bind := func(name string) service {
		return service{client: client, registry: registry, name: name}
	}

	return &Services{
		Admins:       &Admins{service: bind(ResourceAdmins)},
		Profile:      &Profile{service: bind(ResourceProfile)},
		Blogs:        &Blogs{service: bind(ResourceBlogs)},
		Privacy:      NewLegalDoc(bind(ResourcePrivacy)),
		Terms:        NewLegalDoc(bind(ResourceTerms)),
		About:        NewLegalDoc(bind(ResourceAbout)),
		TeamMembers:  &TeamMembers{service: bind(ResourceTeamMembers)},
		Appointments: &Appointments{service: bind(ResourceAppointments)},
		Auth:         &Auth{service: bind(ResourceAuth)},
	}, nil
}

// LegalDoc returns the service for one of privacy, terms or about.
func (s *Services) LegalDoc(name string) (*LegalDoc, bool) {
	switch name {
	case ResourcePrivacy:
		return s.Privacy, true
	case ResourceTerms:
		return s.Terms, true
	case ResourceAbout:
		return s.About, true
	}
	return nil, false
}
