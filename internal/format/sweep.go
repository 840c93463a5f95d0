package format

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker classes and attributes recognised by Sweep.
const (
	ClassNumber   = "format-number"
	ClassCurrency = "format-currency"
	ClassDate     = "format-date"

	searchInputSelector = ".search-input[data-target]"
	deleteSelector      = ".btn-delete"
	alertSelector       = ".alert"
	submitSelector      = `form button[type="submit"]`

	// DeletePrompt is shown before a delete action proceeds.
	DeletePrompt = "Bạn có chắc chắn muốn xóa item này không?"
	// LoadingText replaces submit button labels while a form is in flight.
	LoadingText = "Đang xử lý..."
	// AlertAutoHide is how long non-permanent alerts stay visible.
	AlertAutoHide = 5000
)

// SweepOptions carries per-request inputs to Sweep.
type SweepOptions struct {
	// Query filters tables referenced by search inputs. Empty shows every row.
	Query string
}

// SweepStats counts what a Sweep changed.
type SweepStats struct {
	Formatted   int
	Skipped     int
	HiddenRows  int
	VisibleRows int
}

// Sweep rewrites marker-tagged elements of doc in document order.
// Elements whose text does not parse keep their original text.
func Sweep(doc *goquery.Document, opts SweepOptions) SweepStats {
	var stats SweepStats
	apply := func(class string, render func(string) (string, bool)) {
		doc.Find("." + class).Each(func(_ int, s *goquery.Selection) {
			out, ok := render(s.Text())
			if !ok {
				stats.Skipped++
				return
			}
			s.SetText(out)
			stats.Formatted++
		})
	}
	apply(ClassNumber, func(text string) (string, bool) {
		v, ok := ParseNumber(text)
		if !ok {
			return "", false
		}
		return Number(v), true
	})
	apply(ClassCurrency, func(text string) (string, bool) {
		v, ok := ParseNumber(text)
		if !ok {
			return "", false
		}
		return Currency(v), true
	})
	apply(ClassDate, func(text string) (string, bool) {
		t, ok := ParseDate(text)
		if !ok {
			return "", false
		}
		return DateOf(t), true
	})

	filterTables(doc, opts.Query, &stats)
	decorate(doc)
	return stats
}

func filterTables(doc *goquery.Document, query string, stats *SweepStats) {
	term := strings.ToLower(query)
	doc.Find(searchInputSelector).Each(func(_ int, input *goquery.Selection) {
		target := strings.TrimSpace(input.AttrOr("data-target", ""))
		if target == "" {
			return
		}
		input.SetAttr("value", query)
		doc.Find(target + " tbody tr").Each(func(_ int, row *goquery.Selection) {
			if strings.Contains(strings.ToLower(row.Text()), term) {
				row.RemoveAttr("hidden")
				row.RemoveClass("d-none")
				stats.VisibleRows++
				return
			}
			row.SetAttr("hidden", "")
			row.AddClass("d-none")
			stats.HiddenRows++
		})
	})
}

func decorate(doc *goquery.Document) {
	doc.Find(deleteSelector).SetAttr("data-confirm", DeletePrompt)
	doc.Find(alertSelector).Not(".alert-permanent").SetAttr("data-autohide", strconv.Itoa(AlertAutoHide))
	doc.Find(submitSelector).SetAttr("data-loading-text", LoadingText)
}

// SweepHTML parses body, sweeps it and returns the re-rendered markup.
// Full documents round-trip as documents; fragments are parsed in the
// context of their first element and come back without a document
// wrapper.
func SweepHTML(body []byte, opts SweepOptions) ([]byte, SweepStats, error) {
	if isDocument(body) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, SweepStats{}, err
		}
		stats := Sweep(doc, opts)
		out, err := doc.Html()
		if err != nil {
			return nil, SweepStats{}, err
		}
		return []byte(out), stats, nil
	}

	nodes, err := html.ParseFragment(bytes.NewReader(body), fragmentContext(body))
	if err != nil {
		return nil, SweepStats{}, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	stats := Sweep(goquery.NewDocumentFromNode(root), opts)
	var buf bytes.Buffer
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&buf, n); err != nil {
			return nil, SweepStats{}, err
		}
	}
	return buf.Bytes(), stats, nil
}

func isDocument(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	for bytes.HasPrefix(head, []byte("<!--")) {
		end := bytes.Index(head, []byte("-->"))
		if end < 0 {
			break
		}
		head = bytes.TrimSpace(head[end+3:])
	}
	return bytes.HasPrefix(head, []byte("<!doctype")) || bytes.HasPrefix(head, []byte("<html"))
}

// fragmentContexts maps elements that only parse inside a table or
// select to the parent they need.
var fragmentContexts = map[atom.Atom]atom.Atom{
	atom.Tr:       atom.Tbody,
	atom.Td:       atom.Tr,
	atom.Th:       atom.Tr,
	atom.Thead:    atom.Table,
	atom.Tbody:    atom.Table,
	atom.Tfoot:    atom.Table,
	atom.Caption:  atom.Table,
	atom.Colgroup: atom.Table,
	atom.Col:      atom.Colgroup,
	atom.Option:   atom.Select,
	atom.Optgroup: atom.Select,
}

func fragmentContext(body []byte) *html.Node {
	parent := atom.Body
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			if p, ok := fragmentContexts[atom.Lookup(name)]; ok {
				parent = p
			}
			break
		}
		if tt == html.TextToken && len(bytes.TrimSpace(z.Text())) > 0 {
			break
		}
	}
	return &html.Node{Type: html.ElementNode, Data: parent.String(), DataAtom: parent}
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// Middleware sweeps text/html responses before they reach the client.
// The search query is read from the "q" URL parameter.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := &bufferedResponse{header: w.Header()}
			next.ServeHTTP(buf, r)
			status := buf.status
			if status == 0 {
				status = http.StatusOK
			}
			body := buf.body.Bytes()
			if strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") && len(body) > 0 {
				swept, stats, err := SweepHTML(body, SweepOptions{Query: r.URL.Query().Get("q")})
				if err != nil {
					logger.Warn("format sweep", slog.String("path", r.URL.Path), slog.Any("error", err))
				} else {
					body = swept
					logger.Debug("format sweep",
						slog.String("path", r.URL.Path),
						slog.Int("formatted", stats.Formatted),
						slog.Int("skipped", stats.Skipped),
						slog.Int("hidden_rows", stats.HiddenRows))
				}
			}
			w.Header().Del("Content-Length")
			w.WriteHeader(status)
			_, _ = w.Write(body)
		})
	}
}
