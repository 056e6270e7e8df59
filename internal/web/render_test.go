package web

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatUSD(t *testing.T) {
	cases := map[string]string{
		"0":          "$0.00",
		"24.5":       "$24.50",
		"180":        "$180.00",
		"1234.56":    "$1,234.56",
		"1234567.89": "$1,234,567.89",
		"-42.1":      "-$42.10",
	}
	for in, want := range cases {
		d, err := decimal.NewFromString(in)
		if err != nil {
			t.Fatalf("bad case %q: %v", in, err)
		}
		if got := formatUSD(d); got != want {
			t.Fatalf("formatUSD(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	rnd, err := NewRenderer(false)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	// lo que escribe el usuario se pinta escapado, nunca como markup
	w := httptest.NewRecorder()
	rnd.NotFound(w, "animal", `<script>alert(1)</script>`)

	body := w.Body.String()
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Fatalf("unescaped user content in output: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Fatalf("expected escaped content: %s", body)
	}
}

func TestRenderer_ErrorDetailOnlyInDev(t *testing.T) {
	devRnd, err := NewRenderer(true)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	prodRnd, err := NewRenderer(false)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	boom := errTest("pg: connection refused")

	w := httptest.NewRecorder()
	devRnd.Error(w, boom)
	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Fatal("dev error page should include the detail")
	}

	w = httptest.NewRecorder()
	prodRnd.Error(w, boom)
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatal("prod error page leaked the detail")
	}
	if w.Code != 500 {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
