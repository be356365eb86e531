// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package graylog declares the Graylog 2 REST resources and their
// entities, and bundles typed endpoints for all of them in API.
//
//     c, err := restclient.New(restclient.Config{URL: "http://localhost:9000/api"})
//     api, err := graylog.New(c)
//     stream, err := api.StreamByName(ctx, "All messages")
package graylog

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/diffeo/go-gl2api/cache"
	"github.com/diffeo/go-gl2api/restclient"
	"github.com/diffeo/go-gl2api/schema"
)

// InputTypeCacheSize bounds the number of input types API remembers.
const InputTypeCacheSize = 64

// Resources lists every resource this package declares.
var Resources = []*schema.Resource{
	InputResource,
	InputTypeResource,
	IndexRetentionResource,
	IndexRotationResource,
	IndexSetResource,
	LDAPConfigResource,
	StreamResource,
	StreamRuleTypeResource,
	StreamRuleResource,
	RoleResource,
	ExtractorResource,
	RelativeSearchResource,
	AbsoluteSearchResource,
}

// API holds one typed endpoint per Graylog resource.
type API struct {
	Client *restclient.Client

	Inputs              *restclient.Endpoint[Input, *Input]
	InputTypes          *restclient.Endpoint[InputType, *InputType]
	Extractors          *restclient.Endpoint[Extractor, *Extractor]
	RetentionStrategies *restclient.Endpoint[IndexRetention, *IndexRetention]
	RotationStrategies  *restclient.Endpoint[IndexRotation, *IndexRotation]
	IndexSets           *restclient.Endpoint[IndexSet, *IndexSet]
	LDAPConfig          *restclient.Endpoint[LDAPConfig, *LDAPConfig]
	Streams             *restclient.Endpoint[Stream, *Stream]
	StreamRuleTypes     *restclient.Endpoint[StreamRuleType, *StreamRuleType]
	StreamRules         *restclient.Endpoint[StreamRule, *StreamRule]
	Roles               *restclient.Endpoint[Role, *Role]
	RelativeSearch      *restclient.Endpoint[SearchResults, *SearchResults]
	AbsoluteSearch      *restclient.Endpoint[SearchResults, *SearchResults]

	inputTypes *cache.LRU[*InputType]
}

// bind creates an endpoint unless an earlier bind has already failed.
func bind[T any, P schema.Ptr[T]](c *restclient.Client, r *schema.Resource, err *error) *restclient.Endpoint[T, P] {
	if *err != nil {
		return nil
	}
	e, berr := restclient.NewEndpoint[T, P](c, r)
	*err = berr
	return e
}

// New registers every resource with c's registry and builds the
// endpoints.
func New(c *restclient.Client) (*API, error) {
	var err error
	api := &API{
		Client:              c,
		Inputs:              bind[Input](c, InputResource, &err),
		InputTypes:          bind[InputType](c, InputTypeResource, &err),
		Extractors:          bind[Extractor](c, ExtractorResource, &err),
		RetentionStrategies: bind[IndexRetention](c, IndexRetentionResource, &err),
		RotationStrategies:  bind[IndexRotation](c, IndexRotationResource, &err),
		IndexSets:           bind[IndexSet](c, IndexSetResource, &err),
		LDAPConfig:          bind[LDAPConfig](c, LDAPConfigResource, &err),
		Streams:             bind[Stream](c, StreamResource, &err),
		StreamRuleTypes:     bind[StreamRuleType](c, StreamRuleTypeResource, &err),
		StreamRules:         bind[StreamRule](c, StreamRuleResource, &err),
		Roles:               bind[Role](c, RoleResource, &err),
		RelativeSearch:      bind[SearchResults](c, RelativeSearchResource, &err),
		AbsoluteSearch:      bind[SearchResults](c, AbsoluteSearchResource, &err),
		inputTypes:          cache.New[*InputType](InputTypeCacheSize),
	}
	if err != nil {
		return nil, err
	}
	return api, nil
}

// SetDefaultIndexSet makes an index set the default and returns it as
// the server reports it afterwards.
func (a *API) SetDefaultIndexSet(ctx context.Context, id string) (*IndexSet, error) {
	r, err := a.IndexSets.Do(ctx, "set_default", nil, restclient.Vars{"id": id}, nil)
	if err != nil {
		return nil, err
	}
	return r.Item, nil
}

// ResumeStream starts routing messages into a stream.
func (a *API) ResumeStream(ctx context.Context, id string) error {
	_, err := a.Streams.Do(ctx, "resume", nil, restclient.Vars{"id": id}, nil)
	return err
}

// PauseStream stops routing messages into a stream.
func (a *API) PauseStream(ctx context.Context, id string) error {
	_, err := a.Streams.Do(ctx, "pause", nil, restclient.Vars{"id": id}, nil)
	return err
}

// SearchRelative searches the last q.Range of messages.
func (a *API) SearchRelative(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	query, err := q.RelativeValues()
	if err != nil {
		return nil, err
	}
	return a.search(ctx, a.RelativeSearch, query)
}

// SearchAbsolute searches messages between q.From and q.To.
func (a *API) SearchAbsolute(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	query, err := q.AbsoluteValues()
	if err != nil {
		return nil, err
	}
	return a.search(ctx, a.AbsoluteSearch, query)
}

func (a *API) search(ctx context.Context, e *restclient.Endpoint[SearchResults, *SearchResults], query url.Values) (*SearchResults, error) {
	r, err := e.Do(ctx, schema.OpList, nil, nil, query)
	if err != nil {
		return nil, err
	}
	if r.Item == nil {
		return nil, restclient.ErrUnexpectedResponse{
			Resource:  e.Resource().Name,
			Operation: schema.OpList,
			Reason:    "no search results in response",
		}
	}
	return r.Item, nil
}

// AllInputTypes fetches every input type the server supports, keyed
// by Java class name, and refreshes the input type cache.
func (a *API) AllInputTypes(ctx context.Context) (map[string]*InputType, error) {
	types, err := a.InputTypes.ListMap(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	for class, t := range types {
		a.inputTypes.Put(class, t)
	}
	return types, nil
}

// InputType finds one input type by class name, consulting the cache
// first.
func (a *API) InputType(ctx context.Context, class string) (*InputType, error) {
	return a.inputTypes.Get(class, func(class string) (*InputType, error) {
		types, err := a.InputTypes.ListMap(ctx, nil, nil)
		if err != nil {
			return nil, err
		}
		t, present := types[class]
		if !present {
			return nil, ErrObjectNotFound{Type: "InputType", ID: class}
		}
		return t, nil
	})
}

// ForgetInputTypes empties the input type cache.
func (a *API) ForgetInputTypes() {
	a.inputTypes.Purge()
}

// StreamByName returns the first stream titled name.
func (a *API) StreamByName(ctx context.Context, name string) (*Stream, error) {
	streams, err := a.Streams.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return FindByTitle(streams, func(s *Stream) string { return s.Title }, "Stream", name)
}

// IndexSetByName returns the first index set titled name.
func (a *API) IndexSetByName(ctx context.Context, name string) (*IndexSet, error) {
	sets, err := a.IndexSets.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return FindByTitle(sets, func(s *IndexSet) string { return s.Title }, "IndexSet", name)
}

// InputByTitle returns the first input titled name.
func (a *API) InputByTitle(ctx context.Context, name string) (*Input, error) {
	inputs, err := a.Inputs.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return FindByTitle(inputs, func(i *Input) string { return i.Title }, "Input", name)
}

// StreamByID fetches one stream, translating a 404 into
// ErrObjectNotFound.
func (a *API) StreamByID(ctx context.Context, id string) (*Stream, error) {
	s, err := a.Streams.Get(ctx, restclient.Vars{"id": id})
	var herr restclient.ErrorHTTP
	if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
		return nil, ErrObjectNotFound{Type: "Stream", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrObjectNotFound{Type: "Stream", ID: id}
	}
	return s, nil
}
