package audio

import (
	"reflect"
	"testing"
)

func TestLoopTimeout(t *testing.T) {
	p := NewLogPlayer(nil)
	p.Update(0)
	p.PlayLoop("charge")
	p.PlayLoop("laser")

	for f := 1; f <= LoopTimeout; f++ {
		p.Update(f)
		if f%2 == 0 {
			p.PlayLoop("laser")
		}
	}
	p.Update(LoopTimeout + 1)

	if got := p.Looping(); !reflect.DeepEqual(got, []string{"laser"}) {
		t.Errorf("Looping() = %v, expected [laser]", got)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	var p Player = r

	a := p.PlayEffect("hit0")
	b := p.PlayEffect("hit0")
	p.PlayEffect("enemydeath")
	if a == b || a == 0 {
		t.Errorf("play ids should be distinct and non-zero, got %d and %d", a, b)
	}
	if r.Count("hit0") != 2 || r.Count("enemydeath") != 1 {
		t.Errorf("effects = %v", r.Effects)
	}

	if _, ok := p.CurrentTrack(); ok {
		t.Error("no track should be playing")
	}
	p.PlayTrack("stage5boss", "Thunder Lord")
	if tr, ok := p.CurrentTrack(); !ok || tr.Name != "stage5boss" {
		t.Errorf("CurrentTrack() = %+v, %v", tr, ok)
	}
	p.StopAll()
	if _, ok := p.CurrentTrack(); ok {
		t.Error("StopAll should clear the track")
	}
}
