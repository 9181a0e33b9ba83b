package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/Sternrassler/pokedex-client/pkg/view"
)

// textRenderer writes the browser output as plain lines.
type textRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	failures int
}

func newTextRenderer(out io.Writer) *textRenderer {
	return &textRenderer{out: out}
}

func (t *textRenderer) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *textRenderer) ClearList() {}

func (t *textRenderer) AppendCard(p pokeapi.Pokemon) {
	t.printf("%s\n", view.CardTitle(p))
}

func (t *textRenderer) RenderListError(err error) {
	t.mu.Lock()
	t.failures++
	t.mu.Unlock()
	t.printf("Error loading the pokemon list: %v\n", err)
}

func (t *textRenderer) ClearDetail() {}

func (t *textRenderer) RenderDetail(p pokeapi.Pokemon) {
	d := view.NewDetail(p)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", d.Title)
	fmt.Fprintf(&b, "  Type:      %s\n", view.TitleTypes(d.Types))
	if len(d.Abilities) > 0 {
		fmt.Fprintf(&b, "  Abilities: %s\n", strings.Join(d.Abilities, ", "))
	}
	fmt.Fprintf(&b, "  Height:    %s\n", d.Height)
	fmt.Fprintf(&b, "  Weight:    %s\n", d.Weight)
	for _, s := range d.Stats {
		fmt.Fprintf(&b, "  %-16s %3d %s\n", s.Label, s.Value, bar(s.Percent))
	}
	if d.SpriteURL != "" {
		fmt.Fprintf(&b, "  Sprite:    %s\n", d.SpriteURL)
	}

	t.printf("%s", b.String())
}

func (t *textRenderer) RenderDetailError(key string, err error) {
	t.mu.Lock()
	t.failures++
	t.mu.Unlock()
	t.printf("Could not find the details of %s: %v\n", strings.ToUpper(key), err)
}

func (t *textRenderer) RenderPagination(canNext, canPrev bool) {}

// RenderHistory is a no-op; show prints the final history once with --history.
func (t *textRenderer) RenderHistory(names []string) {}

func (t *textRenderer) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

func bar(percent float64) string {
	const width = 20
	filled := min(int(percent/100*width+0.5), width)
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
