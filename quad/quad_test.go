package quad

import (
	"image"
	"testing"
)

func TestNewBounds(t *testing.T) {
	q := New(TypeContents, 7, image.Rect(10, 20, 110, 70), image.Rect(0, 0, 100, 50))

	if got, want := q.Bounds(), image.Rect(10, 20, 110, 70); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if q.IsTransformed() {
		t.Error("IsTransformed() = true for an axis aligned quad")
	}
	if q.V[2].U != 100 || q.V[2].V != 50 {
		t.Errorf("bottom-right uv = (%v, %v), want (100, 50)", q.V[2].U, q.V[2].V)
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeInvalid, "invalid"},
		{TypeContents, "contents"},
		{TypeDecoration, "decoration"},
		{TypeShadow, "shadow"},
		{TypeEffectStart + 3, "effect"},
		{Type(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestTranslateKeepsOriginals(t *testing.T) {
	q := New(TypeContents, 1, image.Rect(0, 0, 10, 10), image.Rect(0, 0, 10, 10))
	moved := q.Translate(5, 3)

	if moved.V[0].X != 5 || moved.V[0].Y != 3 {
		t.Errorf("V[0] = (%v, %v), want (5, 3)", moved.V[0].X, moved.V[0].Y)
	}
	if moved.V[0].OriginalX() != 5 || moved.V[0].OriginalY() != 3 {
		t.Error("Translate did not move the original position")
	}
	if q.V[0].X != 0 {
		t.Error("Translate modified its receiver")
	}
}

func TestIsTransformed(t *testing.T) {
	q := New(TypeContents, 1, image.Rect(0, 0, 10, 10), image.Rect(0, 0, 10, 10))
	q.V[1].Y += 2
	if !q.IsTransformed() {
		t.Error("IsTransformed() = false after moving one vertex")
	}
	if !(List{q}).IsTransformed() {
		t.Error("List.IsTransformed() = false")
	}
}

func TestMakeSubQuad(t *testing.T) {
	q := New(TypeContents, 1, image.Rect(0, 0, 100, 100), image.Rect(0, 0, 200, 200))
	sub := q.MakeSubQuad(50, 25, 100, 75)

	if got, want := sub.Bounds(), image.Rect(50, 25, 100, 75); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if sub.V[0].U != 100 || sub.V[0].V != 50 {
		t.Errorf("V[0] uv = (%v, %v), want (100, 50)", sub.V[0].U, sub.V[0].V)
	}
	if sub.V[2].U != 200 || sub.V[2].V != 150 {
		t.Errorf("V[2] uv = (%v, %v), want (200, 150)", sub.V[2].U, sub.V[2].V)
	}
}

func TestSwappedSubQuad(t *testing.T) {
	// 10 wide, 40 tall strip sampling a 40×10 transposed sprite.
	q := NewSwapped(TypeDecoration, 0, image.Rect(0, 0, 10, 40), image.Rect(0, 0, 40, 10))
	sub := q.MakeSubQuad(0, 20, 10, 40)

	if !sub.UVSwapped {
		t.Fatal("sub quad lost UVSwapped")
	}
	// Screen y drives texture u.
	if sub.V[0].U != 20 || sub.V[3].U != 40 {
		t.Errorf("u range = %v..%v, want 20..40", sub.V[0].U, sub.V[3].U)
	}
	if sub.V[0].V != 0 || sub.V[1].V != 10 {
		t.Errorf("v range = %v..%v, want 0..10", sub.V[0].V, sub.V[1].V)
	}
}

func TestFilter(t *testing.T) {
	l := List{
		New(TypeContents, 1, image.Rect(0, 0, 1, 1), image.Rectangle{}),
		New(TypeDecoration, 0, image.Rect(0, 0, 1, 1), image.Rectangle{}),
		New(TypeContents, 2, image.Rect(0, 0, 1, 1), image.Rectangle{}),
		New(TypeShadow, 3, image.Rect(0, 0, 1, 1), image.Rectangle{}),
	}
	if got := len(l.Filter(TypeContents)); got != 2 {
		t.Errorf("len(Filter(contents)) = %d, want 2", got)
	}
	if got := len(l.Without(TypeContents)); got != 2 {
		t.Errorf("len(Without(contents)) = %d, want 2", got)
	}
}

func TestMakeGrid(t *testing.T) {
	l := List{New(TypeContents, 1, image.Rect(0, 0, 100, 50), image.Rect(0, 0, 100, 50))}
	grid := l.MakeGrid(40)

	// 3 columns (0-40, 40-80, 80-100) × 2 rows (0-40, 40-50).
	if len(grid) != 6 {
		t.Fatalf("len(MakeGrid(40)) = %d, want 6", len(grid))
	}
	if got, want := grid.Bounds(), image.Rect(0, 0, 100, 50); got != want {
		t.Errorf("grid Bounds() = %v, want %v", got, want)
	}
	var area float64
	for _, q := range grid {
		area += (q.Right() - q.Left()) * (q.Bottom() - q.Top())
	}
	if area != 5000 {
		t.Errorf("grid area = %v, want 5000", area)
	}
}

func TestMakeRegularGrid(t *testing.T) {
	l := List{
		New(TypeContents, 1, image.Rect(0, 0, 60, 60), image.Rect(0, 0, 60, 60)),
		New(TypeDecoration, 0, image.Rect(60, 0, 90, 60), image.Rect(0, 0, 30, 60)),
	}
	grid := l.MakeRegularGrid(3, 2)

	// The content quad spans two of three columns, the decoration quad one.
	if len(grid) != 6 {
		t.Fatalf("len(MakeRegularGrid(3, 2)) = %d, want 6", len(grid))
	}
	if got := len(grid.Filter(TypeDecoration)); got != 2 {
		t.Errorf("decoration cells = %d, want 2", got)
	}
}

func TestGridOnTransformedIsNoop(t *testing.T) {
	q := New(TypeContents, 1, image.Rect(0, 0, 100, 100), image.Rect(0, 0, 100, 100))
	q.V[0].X = -5
	l := List{q}
	if got := l.MakeGrid(10); len(got) != 1 {
		t.Errorf("MakeGrid on transformed list = %d quads, want 1", len(got))
	}
}
