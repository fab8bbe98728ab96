package embed

import (
	"fmt"
	"path"
	"strings"
)

// GuardMacro is the include guard of the generated header.
const GuardMacro = "EMBEDDED_WEBUI_H"

const (
	headerOpen = "#ifndef " + GuardMacro + "\n" +
		"#define " + GuardMacro + "\n" +
		"\n" +
		"#include <Arduino.h>\n" +
		"\n"
	headerClose = "#endif // " + GuardMacro + "\n"
)

const hexDigits = "0123456789abcdef"

// HexList renders data as ", "-separated 0xNN literals.
func HexList(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(data)*6 - 2)
	for i, c := range data {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("0x")
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

// writeBlock emits one resource. The array and length constants use the
// resource identifier; the MIME and flag constants use the role identifier,
// which is what the firmware web server looks up.
func writeBlock(b *strings.Builder, r *Resource) {
	role := r.Role.Ident()
	fmt.Fprintf(b, "\n// Auto-generated from %s\n", path.Base(r.Path))
	fmt.Fprintf(b, "const uint8_t %s[] PROGMEM = {\n    %s\n};\n", r.Ident, HexList(r.Data))
	fmt.Fprintf(b, "const size_t %s_len = %d;\n", r.Ident, r.Len())
	fmt.Fprintf(b, "const char %s_mime[] = %q;\n", role, r.MIME)
	fmt.Fprintf(b, "const bool %s_compressed = %t;\n\n", role, r.Compressed)
}

// Render assembles the header for resources in the given order.
func Render(resources []*Resource) string {
	var b strings.Builder
	b.WriteString(headerOpen)
	for _, r := range resources {
		writeBlock(&b, r)
	}
	b.WriteString(headerClose)
	return b.String()
}
