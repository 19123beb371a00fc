package events

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/spellcore/types"
)

func ev(typ string, kv ...any) types.Event {
	data := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		data[kv[i].(string)] = kv[i+1]
	}
	return types.Event{Type: typ, Data: data}
}

func TestRecorder_KeepsOrderAndFilters(t *testing.T) {
	r := &Recorder{}
	r.Emit(ev(SpellStart, "spell", 133))
	r.Emit(ev(SpellGo, "spell", 133))
	r.Emit(ev(SpellStart, "spell", 116))

	if got := r.Count(SpellStart); got != 2 {
		t.Errorf("Count(spell_start) = %d, want 2", got)
	}
	if got := r.OfType(SpellGo); len(got) != 1 || got[0].Data["spell"] != 133 {
		t.Errorf("OfType(spell_go) = %v, want one event for spell 133", got)
	}

	drained := r.Drain()
	if len(drained) != 3 || drained[1].Type != SpellGo {
		t.Errorf("Drain() = %v, want 3 events in emit order", drained)
	}
	if len(r.Events) != 0 {
		t.Errorf("Events after Drain = %d, want 0", len(r.Events))
	}
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}
	m.Emit(ev(Interrupted))

	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Errorf("recorders got %d and %d events, want 1 and 1", len(a.Events), len(b.Events))
	}
}

func TestLogSink_WritesFields(t *testing.T) {
	core, logs := zapobserver.New(zapcore.DebugLevel)
	LogSink{Log: zap.New(core)}.Emit(ev(SpellMiss, "target", types.GUID(7), "miss", "evade"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event"] != SpellMiss {
		t.Errorf("event field = %v, want %q", fields["event"], SpellMiss)
	}
	if fields["miss"] != "evade" {
		t.Errorf("miss field = %v, want evade", fields["miss"])
	}
}

func TestLogSink_NilLoggerIsNoop(t *testing.T) {
	LogSink{}.Emit(ev(SpellGo))
}

func TestFormat_SortedAndHidesCastID(t *testing.T) {
	got := Format(ev(SpellGo, "spell", 133, "caster", 4, "cast_id", "01H"))
	want := "spell_go caster=4 spell=133"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestBroadcaster_StreamsJSON(t *testing.T) {
	b := NewBroadcaster(zaptest.NewLogger(t))
	srv := httptest.NewServer(b)
	defer srv.Close()
	defer b.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for b.Observers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("observer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Emit(ev(SpellDamage, "target", 9, "amount", 42))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got wireEvent
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if got.Type != SpellDamage {
		t.Errorf("type = %q, want %q", got.Type, SpellDamage)
	}
	if got.Data["amount"] != float64(42) {
		t.Errorf("amount = %v, want 42", got.Data["amount"])
	}
}

func TestBroadcaster_DropsClosedObserver(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	srv := httptest.NewServer(b)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for b.Observers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("observer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	for b.Observers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Observers() = %d after close, want 0", b.Observers())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
