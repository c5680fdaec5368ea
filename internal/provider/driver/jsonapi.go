package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/pkg/models"
)

func init() {
	Register(&jsonAPIDriver{})
}

// jsonAPIOptions configures the jsonapi driver from a plugin manifest.
//
//	driver: jsonapi
//	options:
//	  items_path: data.reviews
//	  fields:
//	    rating: stars
//	    created_at: published_at
type jsonAPIOptions struct {
	// ItemsPath is a dot-separated path to the review array inside the
	// response document. Defaults to "items".
	ItemsPath string `yaml:"items_path"`
	// Fields maps review fields to source keys; unmapped fields read the
	// key of the same name.
	Fields map[string]string `yaml:"fields"`
}

// jsonAPIDriver scrapes review sources that expose a JSON document over HTTP.
type jsonAPIDriver struct{}

func (d *jsonAPIDriver) Name() string { return "jsonapi" }

func (d *jsonAPIDriver) Open(desc provider.Descriptor, options *yaml.Node, client *http.Client) (provider.Provider, error) {
	opts := jsonAPIOptions{ItemsPath: "items"}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, fmt.Errorf("jsonapi options: %w", err)
	}
	if opts.ItemsPath == "" {
		opts.ItemsPath = "items"
	}
	return &jsonAPIProvider{desc: desc, opts: opts, client: client}, nil
}

type jsonAPIProvider struct {
	desc   provider.Descriptor
	opts   jsonAPIOptions
	client *http.Client
}

func (p *jsonAPIProvider) Descriptor() provider.Descriptor { return p.desc }

func (p *jsonAPIProvider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	body, err := fetch(ctx, p.client, url, "application/json")
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, provider.NewError(provider.KindParseError, "cannot decode JSON document", err)
	}

	items, err := walkItems(doc, p.opts.ItemsPath)
	if err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(items))
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, provider.NewError(provider.KindParseError,
				fmt.Sprintf("item %d is not an object", i), nil)
		}
		review, err := models.ReviewFromRepresentation(p.remap(item))
		if err != nil {
			return nil, provider.NewError(provider.KindParseError,
				fmt.Sprintf("item %d is not a valid review", i), err)
		}
		reviews = append(reviews, review)
	}

	return &models.ReviewList{Reviews: reviews}, nil
}

// remap renames source keys to review representation keys per the manifest
// field mapping.
func (p *jsonAPIProvider) remap(item map[string]any) map[string]any {
	rep := make(map[string]any, 6)
	for _, field := range []string{"rating", "created_at", "text", "pros", "cons", "summary"} {
		key := field
		if mapped, ok := p.opts.Fields[field]; ok && mapped != "" {
			key = mapped
		}
		if v, ok := item[key]; ok {
			rep[field] = v
		}
	}
	return rep
}

// walkItems follows a dot path through nested objects down to the review
// array.
func walkItems(doc any, path string) ([]any, error) {
	node := doc
	for _, segment := range strings.Split(path, ".") {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, provider.NewError(provider.KindParseError,
				fmt.Sprintf("path %q does not traverse an object", path), nil)
		}
		node, ok = obj[segment]
		if !ok {
			return nil, provider.NewError(provider.KindParseError,
				fmt.Sprintf("no %q in JSON document", path), nil)
		}
	}
	items, ok := node.([]any)
	if !ok {
		return nil, provider.NewError(provider.KindParseError,
			fmt.Sprintf("%q is not a list", path), nil)
	}
	return items, nil
}
