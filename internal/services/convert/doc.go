// Package convert invokes external converter binaries to produce derivative
// files.
//
// Each derivative format tag maps to a shell command template with {source},
// {target}, and {frame} placeholders; the built-in table covers the
// imagemagick/ffmpeg/pandoc/libreoffice/wkhtmltox tool set and configuration
// can override or extend it. Commands run under a bounded timeout, with a
// longer allowance for video transcodes. The core never interprets media
// content itself; it only decides which command runs and where the output
// belongs.
package convert
