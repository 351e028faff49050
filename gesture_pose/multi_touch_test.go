package gesturepose

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

// fingers places two touches symmetric about mid, r apart from it, with the
// first touch at angle phi as measured by fingerAngle.
func fingers(mid r2.Point, r, phi float64) []Touch {
	off := r2.Point{X: r * math.Sin(phi), Y: r * math.Cos(phi)}
	return []Touch{
		{ID: 1, Pos: mid.Add(off)},
		{ID: 2, Pos: mid.Sub(off)},
	}
}

func deg(d float64) float64 { return d * math.Pi / 180 }

func startTwo(t *testing.T, touches []Touch, obj *fakeObject, cfg GestureConfig, probe objectProbe) *twoTouch {
	t.Helper()
	return newTwoTouch(touches[0], touches[1], obj, cfg, probe)
}

func effectsOf[T Effect](effects []Effect) []T {
	var out []T
	for _, e := range effects {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestTwoTouch_EmptySpaceDisablesChannels(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	obj := newFakeObject()

	g := startTwo(t, fingers(mid, 100, 0), obj, cfg, stubProbe{})
	if g.translate.allowed || g.rotate.allowed || g.scale.allowed {
		t.Errorf("expected all channels disabled off the object, got t=%v r=%v s=%v",
			g.translate.allowed, g.rotate.allowed, g.scale.allowed)
	}

	// A shrunken object can still be pinched back up from empty space.
	obj.scale = 0.05
	g = startTwo(t, fingers(mid, 100, 0), obj, cfg, stubProbe{})
	if g.translate.allowed || g.rotate.allowed || !g.scale.allowed {
		t.Errorf("expected only scale enabled for a tiny object, got t=%v r=%v s=%v",
			g.translate.allowed, g.rotate.allowed, g.scale.allowed)
	}

	cfg.AllowPinchScale = false
	g = startTwo(t, fingers(mid, 100, 0), obj, cfg, stubProbe{hit: alwaysHit})
	if !g.translate.allowed || !g.rotate.allowed || g.scale.allowed {
		t.Errorf("expected scale disabled by config, got t=%v r=%v s=%v",
			g.translate.allowed, g.rotate.allowed, g.scale.allowed)
	}
}

func TestTwoTouch_AnySampleEnables(t *testing.T) {
	cfg := DefaultConfig().Gesture
	obj := newFakeObject()
	touches := []Touch{{ID: 1, Pos: r2.Point{X: 100, Y: 100}}, {ID: 2, Pos: r2.Point{X: 300, Y: 300}}}

	// Only the opposite corner (100, 300) lies over the object.
	probe := stubProbe{hit: func(p r2.Point) bool { return p == r2.Point{X: 100, Y: 300} }}
	g := startTwo(t, touches, obj, cfg, probe)
	if !g.translate.allowed || !g.rotate.allowed || !g.scale.allowed {
		t.Error("a single sample over the object should enable all channels")
	}
}

func TestTwoTouch_TranslateLatch(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	g := startTwo(t, fingers(mid, 100, 0), newFakeObject(), cfg, stubProbe{hit: alwaysHit})
	objScreen := r2.Point{X: 480, Y: 520}

	if eff := g.update(fingers(mid.Add(r2.Point{X: 39}), 100, 0), objScreen); len(eff) != 0 {
		t.Fatalf("expected no effects below 40 units, got %v", eff)
	}

	eff := effectsOf[TranslateEffect](g.update(fingers(mid.Add(r2.Point{X: 40}), 100, 0), objScreen))
	if len(eff) != 1 {
		t.Fatalf("expected translation at 40 units, got %v", eff)
	}
	// The object is grabbed where it is: no jump at the latch.
	if eff[0].Screen != objScreen || !eff[0].InfinitePlane || eff[0].Instantly {
		t.Errorf("unexpected translate effect %+v", eff[0])
	}

	// Latches never release within a session.
	eff = effectsOf[TranslateEffect](g.update(fingers(mid, 100, 0), objScreen))
	if len(eff) != 1 {
		t.Fatal("translation should stay active after returning to the start")
	}
	if want := objScreen.Sub(r2.Point{X: 40}); eff[0].Screen != want {
		t.Errorf("expected %v, got %v", want, eff[0].Screen)
	}
	if !g.translate.passed {
		t.Error("translate latch released")
	}
}

func TestTwoTouch_RotateLatchAbsorbsThreshold(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	obj := newFakeObject()
	obj.rot = 1.0
	g := startTwo(t, fingers(mid, 100, 0), obj, cfg, stubProbe{hit: alwaysHit})

	if eff := g.update(fingers(mid, 100, deg(11)), mid); len(eff) != 0 {
		t.Fatalf("expected no rotation below 12 degrees, got %v", eff)
	}

	eff := effectsOf[RotateEffect](g.update(fingers(mid, 100, deg(13)), mid))
	if len(eff) != 1 {
		t.Fatal("expected rotation past 12 degrees")
	}
	// Only the excess over the threshold is applied at the latch instant.
	if want := 1.0 + deg(1); math.Abs(eff[0].Angle-want) > 1e-9 {
		t.Errorf("expected angle %.5f, got %.5f", want, eff[0].Angle)
	}

	eff = effectsOf[RotateEffect](g.update(fingers(mid, 100, deg(40)), mid))
	if want := 1.0 + deg(28); math.Abs(eff[0].Angle-want) > 1e-9 {
		t.Errorf("expected angle %.5f, got %.5f", want, eff[0].Angle)
	}

	eff = effectsOf[RotateEffect](g.update(fingers(mid, 100, deg(-20)), mid))
	if want := 1.0 - deg(32); math.Abs(eff[0].Angle-want) > 1e-9 {
		t.Errorf("expected angle %.5f, got %.5f", want, eff[0].Angle)
	}
}

func TestTwoTouch_RotateOppositeDirection(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	g := startTwo(t, fingers(mid, 100, 0), newFakeObject(), cfg, stubProbe{hit: alwaysHit})

	eff := effectsOf[RotateEffect](g.update(fingers(mid, 100, deg(-14)), mid))
	if len(eff) != 1 {
		t.Fatal("expected rotation past -12 degrees")
	}
	if want := -deg(2); math.Abs(eff[0].Angle-want) > 1e-9 {
		t.Errorf("expected angle %.5f, got %.5f", want, eff[0].Angle)
	}
}

func TestTwoTouch_HarderRotationAfterTranslation(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	g := startTwo(t, fingers(mid, 100, 0), newFakeObject(), cfg, stubProbe{hit: alwaysHit})

	moved := mid.Add(r2.Point{Y: 45})
	g.update(fingers(moved, 100, 0), mid)
	if !g.translate.passed {
		t.Fatal("expected translation latched")
	}

	if got := g.rotate.limit(g.translate.passed || g.scale.passed); got != cfg.Rotate.Harder {
		t.Fatalf("expected harder rotate threshold %.4f, got %.4f", cfg.Rotate.Harder, got)
	}

	if eff := effectsOf[RotateEffect](g.update(fingers(moved, 100, deg(13)), mid)); len(eff) != 0 {
		t.Fatal("13 degrees should not pass the harder 18 degree threshold")
	}
	eff := effectsOf[RotateEffect](g.update(fingers(moved, 100, deg(19)), mid))
	if len(eff) != 1 {
		t.Fatal("expected rotation past 18 degrees")
	}
	if want := deg(1); math.Abs(eff[0].Angle-want) > 1e-9 {
		t.Errorf("expected the 18 degree threshold absorbed, got %.5f", eff[0].Angle)
	}
}

func TestTwoTouch_ScaleFromBaseline(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	obj := newFakeObject()
	obj.scale = 2
	g := startTwo(t, fingers(mid, 100, 0), obj, cfg, stubProbe{hit: alwaysHit})

	if eff := g.update(fingers(mid, 124, 0), mid); len(eff) != 0 {
		t.Fatalf("expected no scale for a 48 unit spread, got %v", eff)
	}

	eff := effectsOf[ScaleEffect](g.update(fingers(mid, 126, 0), mid))
	if len(eff) != 1 || math.Abs(eff[0].Scale-2) > 1e-9 {
		t.Fatalf("expected scale to start from 2 at the latch, got %v", eff)
	}

	eff = effectsOf[ScaleEffect](g.update(fingers(mid, 252, 0), mid))
	if len(eff) != 1 || math.Abs(eff[0].Scale-4) > 1e-9 {
		t.Errorf("expected scale 4 after doubling the spread, got %v", eff)
	}

	eff = effectsOf[ScaleEffect](g.update(fingers(mid, 63, 0), mid))
	if len(eff) != 1 || math.Abs(eff[0].Scale-1) > 1e-9 {
		t.Errorf("expected scale 1 after halving the spread, got %v", eff)
	}
}

func TestTwoTouch_HarderScaleAfterTranslation(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	g := startTwo(t, fingers(mid, 100, 0), newFakeObject(), cfg, stubProbe{hit: alwaysHit})

	moved := mid.Add(r2.Point{X: -50})
	g.update(fingers(moved, 100, 0), mid)

	if eff := effectsOf[ScaleEffect](g.update(fingers(moved, 130, 0), mid)); len(eff) != 0 {
		t.Fatal("a 60 unit spread should not pass the harder 90 unit threshold")
	}
	if eff := effectsOf[ScaleEffect](g.update(fingers(moved, 146, 0), mid)); len(eff) != 1 {
		t.Fatal("a 92 unit spread should pass the harder threshold")
	}
}

func TestTwoTouch_HarderTranslationAfterRotation(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	g := startTwo(t, fingers(mid, 100, 0), newFakeObject(), cfg, stubProbe{hit: alwaysHit})

	if eff := effectsOf[RotateEffect](g.update(fingers(mid, 100, deg(13)), mid)); len(eff) != 1 {
		t.Fatal("expected rotation latched")
	}
	if got := g.translate.limit(g.rotate.passed || g.scale.passed); got != cfg.Translate.Harder {
		t.Fatalf("expected harder translate threshold %.1f, got %.1f", cfg.Translate.Harder, got)
	}

	if eff := effectsOf[TranslateEffect](g.update(fingers(mid.Add(r2.Point{X: 45}), 100, deg(13)), mid)); len(eff) != 0 {
		t.Fatal("45 units should not pass the harder 70 unit threshold")
	}
	if eff := effectsOf[TranslateEffect](g.update(fingers(mid.Add(r2.Point{X: 69}), 100, deg(13)), mid)); len(eff) != 0 {
		t.Fatal("69 units should not pass the harder 70 unit threshold")
	}
	if eff := effectsOf[TranslateEffect](g.update(fingers(mid.Add(r2.Point{X: 72}), 100, deg(13)), mid)); len(eff) != 1 {
		t.Fatal("72 units should pass the harder threshold")
	}
}

func TestTwoTouch_HarderTranslationAfterScale(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	g := startTwo(t, fingers(mid, 100, 0), newFakeObject(), cfg, stubProbe{hit: alwaysHit})

	if eff := effectsOf[ScaleEffect](g.update(fingers(mid, 126, 0), mid)); len(eff) != 1 {
		t.Fatal("expected scale latched")
	}
	if eff := effectsOf[TranslateEffect](g.update(fingers(mid.Add(r2.Point{Y: -50}), 126, 0), mid)); len(eff) != 0 {
		t.Fatal("50 units should not pass the harder 70 unit threshold")
	}
	if eff := effectsOf[TranslateEffect](g.update(fingers(mid.Add(r2.Point{Y: -72}), 126, 0), mid)); len(eff) != 1 {
		t.Fatal("72 units should pass the harder threshold")
	}
}

func TestTwoTouch_RolesFollowIdentity(t *testing.T) {
	cfg := DefaultConfig().Gesture
	mid := r2.Point{X: 500, Y: 500}
	start := fingers(mid, 100, 0)

	g1 := startTwo(t, start, newFakeObject(), cfg, stubProbe{hit: alwaysHit})
	g2 := startTwo(t, start, newFakeObject(), cfg, stubProbe{hit: alwaysHit})

	turned := fingers(mid, 100, deg(30))
	swapped := []Touch{turned[1], turned[0]}

	e1 := effectsOf[RotateEffect](g1.update(turned, mid))
	e2 := effectsOf[RotateEffect](g2.update(swapped, mid))
	if len(e1) != 1 || len(e2) != 1 {
		t.Fatal("expected rotation from both orderings")
	}
	if math.Abs(e1[0].Angle-e2[0].Angle) > 1e-12 {
		t.Errorf("swapping touch order flipped rotation: %.5f vs %.5f", e1[0].Angle, e2[0].Angle)
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[float64]float64{
		0:                0,
		math.Pi:          math.Pi,
		-math.Pi:         math.Pi,
		3 * math.Pi / 2:  -math.Pi / 2,
		-3 * math.Pi / 2: math.Pi / 2,
	}
	for in, want := range cases {
		if got := normalizeAngle(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("normalizeAngle(%.4f) = %.4f, want %.4f", in, got, want)
		}
	}
}
