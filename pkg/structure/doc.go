/*
Package structure reads and writes the tabular structural files (mmCIF) produced by a
build, and implements the two file algorithms the orchestrator relies on.

The format is handled textually: lines outside the _atom_site table are carried
verbatim, and rows inside it are kept as their original text alongside their split
fields. Nothing here validates chemistry.

  - Extract trims a Document to one contiguous chain/residue range.
  - Consolidate merges several files into one multi-model file, renumbering the
    trailing model-number field with a cumulative offset.
*/
package structure
