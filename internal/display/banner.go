package display

import (
	"fmt"
	"io"

	"github.com/backmassage/speedy/internal/term"
)

const banner = `                        _
 ___ _ __   ___  ___  __| |_   _
/ __| '_ \ / _ \/ _ \/ _` + "`" + ` | | | |
\__ \ |_) |  __/  __/ (_| | |_| |
|___/ .__/ \___|\___|\__,_|\__, |
    |_|                    |___/
`

// PrintBanner writes the ASCII banner to w, in magenta when colors are on.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Wrap(term.Magenta, banner))
}
