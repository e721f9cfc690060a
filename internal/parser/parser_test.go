package parser

import "testing"

func TestIsSupportedExtension(t *testing.T) {
	cases := map[string]bool{
		"report.pdf":   true,
		"REPORT.PDF":   true,
		"notes.txt":    false,
		"archive":      false,
		"a.pdf.docx":   false,
		"dir/file.pdf": true,
	}
	for name, want := range cases {
		if got := IsSupportedExtension(name); got != want {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLooksLikePDF(t *testing.T) {
	if !LooksLikePDF([]byte("%PDF-1.7\n...")) {
		t.Error("expected header to be recognised")
	}
	if !LooksLikePDF([]byte("\xef\xbb\xbf%PDF-1.4")) {
		t.Error("expected header after leading bytes to be recognised")
	}
	if LooksLikePDF([]byte("PK\x03\x04 zip")) {
		t.Error("expected zip data to be rejected")
	}
	if LooksLikePDF(nil) {
		t.Error("expected empty data to be rejected")
	}
}
