package charset

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/compenguy/encodingbuf"
	"github.com/compenguy/encodingbuf/errors"
)

// Resolve maps a WHATWG encoding label to a strict decoder for that
// encoding. It returns the decoder and the canonical name of the resolved
// encoding (e.g. "latin1" resolves to "windows-1252"). Unknown labels fail
// with a resolve/unknown_encoding error; no other work is done.
func Resolve(label string) (encodingbuf.Decoder, string, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, "", errors.UnknownEncoding(label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		// Every encoding htmlindex hands out has a canonical name.
		return nil, "", errors.UnknownEncoding(label)
	}

	switch name {
	case "utf-8":
		return newUTF8Decoder(), name, nil
	case "utf-16le":
		return newUTF16Decoder(littleEndian), name, nil
	case "utf-16be":
		return newUTF16Decoder(bigEndian), name, nil
	}

	if cm, ok := enc.(*charmap.Charmap); ok {
		return newCharmapDecoder(cm), name, nil
	}

	// Multibyte CJK encodings, and the poisoned "replacement" encoding.
	return newStrictDecoder(enc), name, nil
}

// canonicalLabels is the canonical name of every encoding in the WHATWG
// index, sorted.
var canonicalLabels = []string{
	"big5",
	"euc-jp",
	"euc-kr",
	"gb18030",
	"gbk",
	"ibm866",
	"iso-2022-jp",
	"iso-8859-10",
	"iso-8859-13",
	"iso-8859-14",
	"iso-8859-15",
	"iso-8859-16",
	"iso-8859-2",
	"iso-8859-3",
	"iso-8859-4",
	"iso-8859-5",
	"iso-8859-6",
	"iso-8859-7",
	"iso-8859-8",
	"iso-8859-8-i",
	"koi8-r",
	"koi8-u",
	"macintosh",
	"replacement",
	"shift_jis",
	"utf-16be",
	"utf-16le",
	"utf-8",
	"windows-1250",
	"windows-1251",
	"windows-1252",
	"windows-1253",
	"windows-1254",
	"windows-1255",
	"windows-1256",
	"windows-1257",
	"windows-1258",
	"windows-874",
	"x-mac-cyrillic",
	"x-user-defined",
}

// Labels returns the canonical names of all encodings Resolve accepts.
// Each name is also a valid label; most encodings have further aliases.
func Labels() []string {
	out := make([]string, len(canonicalLabels))
	copy(out, canonicalLabels)
	return out
}
