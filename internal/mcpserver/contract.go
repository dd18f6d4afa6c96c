package mcpserver

// CitationFormatContract describes how LLM consumers should cite files in
// replies so that the link rewriter can resolve them to real downloads.
const CitationFormatContract = `# Ansuz Citation Format Contract

When a reply references a file the user can download, cite it with a standard
Markdown link whose URL ends in the file name:

` + "```" + `markdown
You can find the details in [the quarterly report](sandbox:/mnt/data/report.pdf).
` + "```" + `

## Rules

1. **Use inline Markdown links.** ` + "`" + `[link text](url)` + "`" + ` is the only form the
   rewriter recognizes; bare URLs and reference-style links are ignored.
2. **The last URL segment is the citation key.** The rewriter takes the final
   path segment (e.g. ` + "`" + `report.pdf` + "`" + `), strips the extension, and fuzzy-matches
   the stem against the file inventory. Scheme and directories do not matter.
3. **Do not invent exact paths.** An approximate filename is enough; the
   resolver matches ` + "`" + `report.pdf` + "`" + ` to ` + "`" + `docs/report_final.pdf` + "`" + `. Use the
   ` + "`" + `resolve_file` + "`" + ` tool to check what a citation will resolve to.
4. **External links pass through.** URLs starting with ` + "`" + `http://` + "`" + ` or
   ` + "`" + `https://` + "`" + ` are left untouched and never rewritten.
5. **One link per citation.** Repeat the link if the same file is cited more
   than once; each occurrence gets its own source card.

## Example

Reply text:

` + "```" + `markdown
The figures are in [the Q3 report](sandbox:/mnt/data/q3_report.xlsx) and the
methodology in [the appendix](sandbox:/mnt/data/appendix.pdf).
` + "```" + `

After rewriting, each citation becomes a numbered source card linking to the
matched file under ` + "`" + `/files/` + "`" + `.
`
