// Package source finds report documents on disk and loads them as markup text.
//
// Discovery walks input directories for rendered .html/.htm reports, skipping
// the asset folders ("<name>_files") that document converters write next to
// each page. Loading decodes the bytes to UTF-8, honouring a byte order mark
// or <meta charset> and falling back to statistical detection, because
// converter output is frequently windows-1252.
package source
