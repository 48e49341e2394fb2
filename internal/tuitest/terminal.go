package tuitest

import (
	"bytes"
	"io"
)

// queryReplies answers the capability probes bubbletea sends at startup
// (cursor position, foreground and background color) so the program under
// test does not stall waiting on a real terminal.
var queryReplies = []struct {
	query []byte
	reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

type queryResponder struct {
	w   io.Writer
	buf []byte
}

func newQueryResponder(w io.Writer) *queryResponder {
	return &queryResponder{w: w, buf: make([]byte, 0, 128)}
}

func (qr *queryResponder) Process(chunk []byte) {
	qr.buf = append(qr.buf, chunk...)
	for qr.answerOne() {
	}
	if len(qr.buf) > 256 {
		// Keep a tail so a query split across reads still matches.
		qr.buf = qr.buf[len(qr.buf)-64:]
	}
}

func (qr *queryResponder) answerOne() bool {
	for _, qa := range queryReplies {
		idx := bytes.Index(qr.buf, qa.query)
		if idx < 0 {
			continue
		}
		qr.buf = qr.buf[idx+len(qa.query):]
		_, _ = qr.w.Write(qa.reply)
		return true
	}
	return false
}
