// Package ucsctest provides a fake UCSC Genome Browser for tests. It keeps a
// reverse display toggle per server the same way the real browser keeps one
// per hgsid, and records every request it receives.
package ucsctest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	Db        = "hg19"
	PNGRef    = "../trash/hgt/hgt_genome_6243_68cdb0.png"
	PDFRef    = "../trash/hgt/hgt_genome_6243_68cdb0.pdf"
	IdeoRef   = "../trash/hgt/hgt_ideo_6243_68cdb0.pdf"
	ToggleVar = "hgt.toggleRevCmplDisp"
)

var (
	PNGBytes = []byte("\x89PNG\r\n\x1a\nfake png")
	PDFBytes = []byte("%PDF-1.4 fake pdf")
)

type Request struct {
	Method string
	Path   string
	Form   url.Values
	Time   time.Time
}

// Toggled reports whether the request flipped the reverse display.
func (r Request) Toggled() bool {
	return r.Form.Get(ToggleVar) == "1"
}

type Server struct {
	*httptest.Server

	lock     sync.Mutex
	flipped  bool
	requests []Request

	// CartDump, if set, replaces the generated cartDump listing.
	CartDump string
	// TracksBody, if set, replaces the generated hgTracks page.
	TracksBody string
	// FailPath makes requests to this path respond with FailStatus.
	FailPath   string
	FailStatus int
}

// NewServer starts a fake browser whose reverse display starts as `flipped`.
func NewServer(flipped bool) *Server {
	s := &Server{flipped: flipped}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Flipped is the server side reverse display state.
func (s *Server) Flipped() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.flipped
}

func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Request(nil), s.requests...)
}

// TracksRequests returns only the hgTracks render requests.
func (s *Server) TracksRequests() []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == "/cgi-bin/hgTracks" {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Form:   r.Form,
		Time:   time.Now(),
	})

	if s.FailPath != "" && r.URL.Path == s.FailPath {
		http.Error(w, "failure", s.FailStatus)
		return
	}

	switch {
	case r.URL.Path == "/cgi-bin/cartDump" && r.Method == http.MethodGet:
		s.writeCartDump(w)
	case r.URL.Path == "/cgi-bin/hgTracks" && r.Method == http.MethodPost:
		if r.Form.Get(ToggleVar) == "1" {
			s.flipped = !s.flipped
		}
		s.writeTracks(w, r.Form)
	case strings.HasPrefix(r.URL.Path, "/trash/hgt/") && strings.HasSuffix(r.URL.Path, ".png"):
		w.Header().Set("Content-Type", "image/png")
		w.Write(PNGBytes)
	case strings.HasPrefix(r.URL.Path, "/trash/hgt/") && strings.HasSuffix(r.URL.Path, ".pdf"):
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(PDFBytes)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) writeCartDump(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	if s.CartDump != "" {
		fmt.Fprint(w, s.CartDump)
		return
	}
	flipped := 0
	if s.flipped {
		flipped = 1
	}
	fmt.Fprintf(
		w,
		"<HTML><BODY><TT><PRE>clade mammal\ndb %s\nhgt.revCmplDisp_%s %d\nposition chr1:1-1000\n</PRE></TT></BODY></HTML>",
		Db, Db, flipped,
	)
}

func (s *Server) writeTracks(w http.ResponseWriter, form url.Values) {
	w.Header().Set("Content-Type", "text/html")
	if s.TracksBody != "" {
		fmt.Fprint(w, s.TracksBody)
		return
	}
	if form.Get("hgt.psOutput") == "on" {
		fmt.Fprintf(w, `<HTML><BODY>
<H1>PDF Output</H1>
<UL>
<LI>Download <A HREF="%s">the current browser graphic in PDF</A></LI>
<LI>Download <A HREF="%s">the current chromosome ideogram in PDF</A></LI>
</UL>
</BODY></HTML>`, PDFRef, IdeoRef)
		return
	}
	if form.Get("hgt.trackImgOnly") == "1" {
		fmt.Fprintf(w, "<IMG SRC='%s' BORDER=1 WIDTH=1000 HEIGHT=600><BR>\n", PNGRef)
		return
	}
	fmt.Fprint(w, "<HTML><BODY>genome browser</BODY></HTML>")
}
