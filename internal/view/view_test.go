package view_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physview/internal/apiclient"
	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/mathrender"
	"github.com/san-kum/physview/internal/view"
)

type recordingRenderer struct {
	seen []string
}

func (r *recordingRenderer) Render(expr string) string {
	r.seen = append(r.seen, expr)
	return "[" + mathrender.StripInline(expr) + "]"
}

type api struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newAPI(status int, body string) *api {
	a := &api{}
	a.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	DeferCleanup(a.server.Close)
	return a
}

// run executes cmd and feeds its messages to v, without following the
// spinner's timer commands.
func run(v *view.FormulaView, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			run(v, c)
		}
	default:
		v.Update(msg)
	}
}

func mount(v *view.FormulaView) {
	cmd := v.Init()
	Expect(cmd).NotTo(BeNil())
	run(v, cmd)
}

var _ = Describe("FormulaView", func() {
	var renderer *recordingRenderer

	BeforeEach(func() {
		renderer = &recordingRenderer{}
	})

	newView := func(a *api) *view.FormulaView {
		client := apiclient.New(a.server.URL, time.Second)
		v := view.New(context.Background(), client, renderer)
		DeferCleanup(v.Close)
		return v
	}

	It("starts in the loading state", func() {
		v := view.New(context.Background(), apiclient.New("http://127.0.0.1:1", time.Second), renderer)
		defer v.Close()
		Expect(v.State()).To(Equal(view.Loading{}))
		Expect(v.View()).To(ContainSubstring(view.Title))
		Expect(v.View()).To(ContainSubstring("loading formulas"))
	})

	Context("when the API returns formulas", func() {
		It("renders one entry per record in received order", func() {
			a := newAPI(http.StatusOK, `[
				{"id":5,"formula_name":"Work","latex":"W = F d"},
				{"id":1,"formula_name":"Momentum","latex":"\\vec{p} = m \\vec{v}"},
				{"id":3,"formula_name":"Power","latex":"P = \\frac{W}{t}"}
			]`)
			v := newView(a)
			mount(v)

			Expect(v.State()).To(Equal(view.Loaded{Formulas: []formula.Formula{
				{ID: 5, Name: "Work", Latex: "W = F d"},
				{ID: 1, Name: "Momentum", Latex: `\vec{p} = m \vec{v}`},
				{ID: 3, Name: "Power", Latex: `P = \frac{W}{t}`},
			}}))

			out := v.View()
			Expect(strings.Count(out, "•")).To(Equal(3))
			Expect(out).To(ContainSubstring("formulas (3)"))
			Expect(out).NotTo(ContainSubstring("Error"))

			work := strings.Index(out, "Work:")
			momentum := strings.Index(out, "Momentum:")
			power := strings.Index(out, "Power:")
			Expect(work).To(BeNumerically(">=", 0))
			Expect(momentum).To(BeNumerically(">", work))
			Expect(power).To(BeNumerically(">", momentum))

			Expect(renderer.seen).To(Equal([]string{`\(W = F d\)`, `\(\vec{p} = m \vec{v}\)`, `\(P = \frac{W}{t}\)`}))
		})

		It("delimits Newton's second law before delegating", func() {
			a := newAPI(http.StatusOK, `[{"id":1,"formula_name":"Newton's Second Law","latex":"F = ma"}]`)
			v := newView(a)
			mount(v)

			out := v.View()
			label := strings.Index(out, "Newton's Second Law:")
			Expect(label).To(BeNumerically(">=", 0))
			Expect(out[label:]).To(ContainSubstring("[F = ma]"))
			Expect(renderer.seen).To(ConsistOf(`\(F = ma\)`))
		})

		It("typesets with the unicode renderer", func() {
			a := newAPI(http.StatusOK, `[{"id":1,"formula_name":"Momentum","latex":"\\vec{p} = m \\vec{v}"}]`)
			v := view.New(context.Background(), apiclient.New(a.server.URL, time.Second), mathrender.NewUnicode())
			defer v.Close()
			mount(v)

			Expect(v.View()).To(ContainSubstring("p⃗ = m v⃗"))
		})
	})

	Context("when the API returns an empty array", func() {
		It("renders an empty list without an error", func() {
			v := newView(newAPI(http.StatusOK, `[]`))
			mount(v)

			Expect(v.State()).To(Equal(view.Loaded{Formulas: []formula.Formula{}}))
			out := v.View()
			Expect(out).To(ContainSubstring("formulas (0)"))
			Expect(out).NotTo(ContainSubstring("•"))
			Expect(out).NotTo(ContainSubstring("Error"))
		})
	})

	Context("when the API fails", func() {
		It("shows the status code for HTTP 500 and no items", func() {
			v := newView(newAPI(http.StatusInternalServerError, `{"error":"boom"}`))
			mount(v)

			state, ok := v.State().(view.Errored)
			Expect(ok).To(BeTrue())
			Expect(state.Message).To(ContainSubstring("500"))

			out := v.View()
			Expect(out).To(ContainSubstring("Error: HTTP error! Status: 500"))
			Expect(out).NotTo(ContainSubstring("•"))
			Expect(out).NotTo(ContainSubstring("formulas ("))
			Expect(renderer.seen).To(BeEmpty())
		})

		It("shows an error for malformed JSON and no items", func() {
			v := newView(newAPI(http.StatusOK, `[{"id":1,"formula_name":`))
			mount(v)

			Expect(v.State()).To(BeAssignableToTypeOf(view.Errored{}))
			out := v.View()
			Expect(out).To(ContainSubstring("Error: "))
			Expect(out).NotTo(ContainSubstring("•"))
		})

		It("shows an error when the API is unreachable", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()

			v := view.New(context.Background(), apiclient.New(url, time.Second), renderer)
			defer v.Close()
			mount(v)

			Expect(v.State()).To(BeAssignableToTypeOf(view.Errored{}))
		})
	})

	Context("request accounting", func() {
		It("makes exactly one request per mount regardless of re-renders", func() {
			a := newAPI(http.StatusOK, `[{"id":1,"formula_name":"Work","latex":"W = F d"}]`)
			v := newView(a)
			mount(v)

			Expect(v.Init()).To(BeNil())
			for i := 0; i < 10; i++ {
				v.Update(tea.WindowSizeMsg{Width: 100 + i, Height: 40})
				v.Update(spinner.TickMsg{})
				_ = v.View()
			}
			Expect(v.Load()).To(BeAssignableToTypeOf(view.Loaded{}))
			Expect(a.hits.Load()).To(Equal(int32(1)))
		})

		It("fetches again for a new view instance", func() {
			a := newAPI(http.StatusOK, `[]`)
			mount(newView(a))
			mount(newView(a))
			Expect(a.hits.Load()).To(Equal(int32(2)))
		})

		It("loads synchronously for non-interactive output", func() {
			a := newAPI(http.StatusOK, `[{"id":1,"formula_name":"Work","latex":"W = F d"}]`)
			v := newView(a)

			Expect(v.Load()).To(BeAssignableToTypeOf(view.Loaded{}))
			Expect(v.Init()).To(BeNil())
			Expect(a.hits.Load()).To(Equal(int32(1)))
		})
	})

	Context("state transitions", func() {
		It("keeps the first terminal state", func() {
			v := newView(newAPI(http.StatusOK, `[]`))
			mount(v)

			failing := view.New(context.Background(), fetcherFunc(func(context.Context) ([]formula.Formula, error) {
				return nil, errors.New("late failure")
			}), renderer)
			defer failing.Close()
			// replay a failure message from another view's fetch into v
			run(v, failing.Init())

			Expect(v.State()).To(Equal(view.Loaded{Formulas: []formula.Formula{}}))
		})
	})

	Context("teardown", func() {
		It("drops a response that arrives after Close", func() {
			started := make(chan struct{})
			release := make(chan struct{})
			v := view.New(context.Background(), fetcherFunc(func(ctx context.Context) ([]formula.Formula, error) {
				close(started)
				<-release
				return []formula.Formula{{ID: 1, Name: "Work", Latex: "W = F d"}}, nil
			}), renderer)

			batch, ok := v.Init()().(tea.BatchMsg)
			Expect(ok).To(BeTrue())
			results := make(chan tea.Msg, len(batch))
			for _, c := range batch {
				go func(c tea.Cmd) { results <- c() }(c)
			}

			Eventually(started).Should(BeClosed())
			v.Close()
			close(release)

			for range batch {
				v.Update(<-results)
			}
			Expect(v.State()).To(Equal(view.Loading{}))
			Expect(v.Closed()).To(BeTrue())
		})

		It("cancels the in-flight request on Close", func() {
			var sawCancel atomic.Bool
			v := view.New(context.Background(), fetcherFunc(func(ctx context.Context) ([]formula.Formula, error) {
				<-ctx.Done()
				sawCancel.Store(true)
				return nil, ctx.Err()
			}), renderer)

			cmd := v.Init()
			v.Close()
			run(v, cmd)

			Expect(sawCancel.Load()).To(BeTrue())
			Expect(v.State()).To(Equal(view.Loading{}))
		})

		It("quits and tears down on q", func() {
			v := newView(newAPI(http.StatusOK, `[]`))
			_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(Equal(tea.QuitMsg{}))
			Expect(v.Closed()).To(BeTrue())
		})
	})

	Context("themes", func() {
		It("falls back to the default theme", func() {
			Expect(view.GetTheme("nonexistent").Name).To(Equal("default"))
			Expect(view.ThemeNames()).To(ContainElements("default", "retro", "ocean", "minimal"))
		})

		It("renders with any theme", func() {
			for _, name := range view.ThemeNames() {
				v := view.New(context.Background(), apiclient.New("http://127.0.0.1:1", time.Second), renderer, view.WithTheme(name))
				Expect(v.View()).To(ContainSubstring(view.Title))
				v.Close()
			}
		})
	})
})

type fetcherFunc func(ctx context.Context) ([]formula.Formula, error)

func (f fetcherFunc) Fetch(ctx context.Context) ([]formula.Formula, error) { return f(ctx) }
