package driver

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/pkg/models"
)

func init() {
	Register(&htmlDriver{})
}

// htmlSelectors locate review parts inside a page. Item is required; the
// rest are optional except date and rating, which a valid review needs.
type htmlSelectors struct {
	Item    string `yaml:"item"`
	Rating  string `yaml:"rating"`
	Text    string `yaml:"text"`
	Pros    string `yaml:"pros"`
	Cons    string `yaml:"cons"`
	Summary string `yaml:"summary"`
	Date    string `yaml:"date"`
}

// htmlOptions configures the html driver from a plugin manifest.
//
//	driver: html
//	options:
//	  selectors:
//	    item: ".review"
//	    rating: ".stars"
//	    text: ".review-body"
//	    date: "time"
//	  rating_attr: data-rating
//	  date_attr: datetime
//	  date_layout: "2006-01-02"
type htmlOptions struct {
	Selectors  htmlSelectors `yaml:"selectors"`
	RatingAttr string        `yaml:"rating_attr"`
	DateAttr   string        `yaml:"date_attr"`
	DateLayout string        `yaml:"date_layout"`
}

// htmlDriver scrapes review sources that render reviews as static HTML.
// Review bodies are converted from HTML to markdown so the stored text is
// readable without a browser.
type htmlDriver struct{}

func (d *htmlDriver) Name() string { return "html" }

func (d *htmlDriver) Open(desc provider.Descriptor, options *yaml.Node, client *http.Client) (provider.Provider, error) {
	var opts htmlOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, fmt.Errorf("html options: %w", err)
	}
	if opts.Selectors.Item == "" {
		return nil, fmt.Errorf("html driver requires selectors.item")
	}
	return &htmlProvider{
		desc:      desc,
		opts:      opts,
		client:    client,
		converter: md.NewConverter("", true, nil),
	}, nil
}

type htmlProvider struct {
	desc      provider.Descriptor
	opts      htmlOptions
	client    *http.Client
	converter *md.Converter
}

func (p *htmlProvider) Descriptor() provider.Descriptor { return p.desc }

func (p *htmlProvider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	body, err := fetch(ctx, p.client, url, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewError(provider.KindParseError, "cannot parse HTML document", err)
	}

	items := doc.Find(p.opts.Selectors.Item)
	if items.Length() == 0 {
		return nil, provider.NewError(provider.KindParseError,
			fmt.Sprintf("no review items matched selector %q", p.opts.Selectors.Item), nil)
	}

	var reviews []models.Review
	var itemErr error
	items.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		review, err := p.extractReview(sel)
		if err != nil {
			itemErr = provider.NewError(provider.KindParseError,
				fmt.Sprintf("review item %d", i), err)
			return false
		}
		reviews = append(reviews, review)
		return true
	})
	if itemErr != nil {
		return nil, itemErr
	}

	return &models.ReviewList{Reviews: reviews}, nil
}

func (p *htmlProvider) extractReview(sel *goquery.Selection) (models.Review, error) {
	var review models.Review

	if p.opts.Selectors.Date != "" {
		raw := p.selectValue(sel, p.opts.Selectors.Date, p.opts.DateAttr)
		created, err := p.parseDate(raw)
		if err != nil {
			return models.Review{}, err
		}
		review.CreatedAt = created
	}

	if p.opts.Selectors.Rating != "" {
		raw := p.selectValue(sel, p.opts.Selectors.Rating, p.opts.RatingAttr)
		rating, err := parseRating(raw)
		if err != nil {
			return models.Review{}, err
		}
		review.Rating = &rating
	}

	if p.opts.Selectors.Text != "" {
		text, err := p.markdownOf(sel, p.opts.Selectors.Text)
		if err != nil {
			return models.Review{}, err
		}
		review.Text = text
	}
	for _, field := range []struct {
		selector string
		dst      **string
	}{
		{p.opts.Selectors.Pros, &review.Pros},
		{p.opts.Selectors.Cons, &review.Cons},
		{p.opts.Selectors.Summary, &review.Summary},
	} {
		if field.selector == "" {
			continue
		}
		if s := strings.TrimSpace(sel.Find(field.selector).First().Text()); s != "" {
			*field.dst = &s
		}
	}

	return review, nil
}

// markdownOf converts the selected node's inner HTML to markdown.
func (p *htmlProvider) markdownOf(sel *goquery.Selection, selector string) (*string, error) {
	node := sel.Find(selector).First()
	if node.Length() == 0 {
		return nil, nil
	}
	inner, err := node.Html()
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", selector, err)
	}
	text, err := p.converter.ConvertString(inner)
	if err != nil {
		return nil, fmt.Errorf("markdown conversion of %q: %w", selector, err)
	}
	text = strings.TrimSpace(text)
	return &text, nil
}

func (p *htmlProvider) selectValue(sel *goquery.Selection, selector, attr string) string {
	node := sel.Find(selector).First()
	if attr != "" {
		v, _ := node.Attr(attr)
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(node.Text())
}

// dateLayouts are tried in order when the manifest does not pin one.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (p *htmlProvider) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty review date")
	}
	layouts := dateLayouts
	if p.opts.DateLayout != "" {
		layouts = []string{p.opts.DateLayout}
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse review date %q", raw)
}

// parseRating reads the leading number out of a rating string, tolerating
// forms like "4.5 out of 5".
func parseRating(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty review rating")
	}
	fields := strings.Fields(raw)
	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse review rating %q", raw)
	}
	return rating, nil
}
