package size

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/zhehaowang/sneaky/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sz(mag float64) domain.ShoeSize {
	return domain.ShoeSize{Magnitude: mag}
}

func TestConvertNikeMenEUToUS(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	got, err := c.Convert(sz(42.5), ClassNikeMenEU, domain.ClassUS)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Magnitude != 9.0 {
		t.Fatalf("eu 42.5 got us %.1f want 9.0", got.Magnitude)
	}
}

func TestConvertIdentity(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	got, err := c.Convert(sz(9.5), domain.ClassUS, domain.ClassUS)
	if err != nil {
		t.Fatalf("identity convert: %v", err)
	}
	if got.Magnitude != 9.5 {
		t.Fatalf("identity got %.1f want 9.5", got.Magnitude)
	}
}

func TestConvertNoMapping(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	_, err := c.Convert(sz(42.0), ClassNikeMenEU, ClassAdidasMenEU)
	if !errors.Is(err, domain.ErrNoMapping) {
		t.Fatalf("got %v want ErrNoMapping", err)
	}
}

func TestConvertUnknownSize(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	// 41.5 is not on the Nike men chart.
	_, err := c.Convert(sz(41.5), ClassNikeMenEU, domain.ClassUS)
	if !errors.Is(err, domain.ErrUnknownSize) {
		t.Fatalf("got %v want ErrUnknownSize", err)
	}
}

func TestRoundTripUSDomain(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	// Inverse then forward must return the starting size for everything in
	// the derived US domain.
	for _, m := range []float64{4.0, 5.0, 7.5, 9.0, 11.0, 14.0} {
		eu, err := c.Convert(sz(m), domain.ClassUS, ClassNikeMenEU)
		if err != nil {
			t.Fatalf("us %.1f to eu: %v", m, err)
		}
		back, err := c.Convert(eu, ClassNikeMenEU, domain.ClassUS)
		if err != nil {
			t.Fatalf("eu %.1f back to us: %v", eu.Magnitude, err)
		}
		if back.Magnitude != m {
			t.Fatalf("round trip us %.1f via eu %.1f got %.1f", m, eu.Magnitude, back.Magnitude)
		}
	}
}

func TestRoundTripEUDomainOutsideCollisions(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	collided := make(map[float64]bool)
	for _, col := range c.Collisions() {
		collided[col.Dropped] = true
	}

	for _, chart := range DefaultCharts() {
		for _, p := range chart.Pairs {
			if collided[p.From] {
				continue
			}
			us, err := c.Convert(sz(p.From), chart.From, chart.To)
			if err != nil {
				t.Fatalf("%s %.1f forward: %v", chart.From, p.From, err)
			}
			back, err := c.Convert(us, chart.To, chart.From)
			if err != nil {
				t.Fatalf("%s %.1f back: %v", chart.From, us.Magnitude, err)
			}
			if back.Magnitude != p.From {
				t.Fatalf("%s round trip %.1f got %.1f", chart.From, p.From, back.Magnitude)
			}
		}
	}
}

func TestDuplicateInverseKeepsLast(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	// adidas men: both EU 37.0 and 37.5 map to US 5.0; the inverse must keep
	// the later insertion (37.5) and surface the collision.
	got, err := c.Convert(sz(5.0), domain.ClassUS, ClassAdidasMenEU)
	if err != nil {
		t.Fatalf("us 5.0 to adidas eu: %v", err)
	}
	if got.Magnitude != 37.5 {
		t.Fatalf("us 5.0 inverse got %.1f want 37.5", got.Magnitude)
	}

	found := false
	for _, col := range c.Collisions() {
		if col.Target == 5.0 && col.Kept == 37.5 && col.Dropped == 37.0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("collision for us 5.0 not recorded: %+v", c.Collisions())
	}
}

func TestInferGenderClass(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	// 47.5 exists only on the Nike men chart.
	class, err := c.InferGenderClass([]domain.ShoeSize{sz(42.5), sz(47.5)})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if class != ClassNikeMenEU {
		t.Fatalf("got %s want %s", class, ClassNikeMenEU)
	}
}

func TestInferGenderClassAmbiguousPicksRestrictive(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	// 36.0 and 38.5 are on Nike men, adidas men and adidas women charts; the
	// women chart is smallest so it must win.
	class, err := c.InferGenderClass([]domain.ShoeSize{sz(36.0), sz(38.5)})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if class != ClassAdidasWomenEU {
		t.Fatalf("got %s want %s", class, ClassAdidasWomenEU)
	}
}

func TestInferGenderClassNoMatch(t *testing.T) {
	c := NewConverter(DefaultCharts(), testLogger())

	_, err := c.InferGenderClass([]domain.ShoeSize{sz(36.0), sz(99.0)})
	if !errors.Is(err, domain.ErrNoGenderMatch) {
		t.Fatalf("got %v want ErrNoGenderMatch", err)
	}
}
