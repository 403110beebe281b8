// Package harness runs edit scripts against project documents.
//
// A script names a starting document, a list of edit steps and the
// expected outcome. The harness applies the steps through the document API,
// so the result shows exactly how the whitespace formatter places new
// content, and golden files pin the serialized text byte for byte.
//
// # Script Format
//
//	name: add_reference
//	description: "Adds a conditioned reference"
//	document: |
//	  <Project ToolsVersion="4.0">
//	  ...
//	  </Project>
//	engine: legacy
//	steps:
//	  - op: set_property
//	    name: OutputType
//	    value: Library
//	  - op: add_item
//	    type: Reference
//	    include: System.Xml
//	  - op: set_condition
//	    select: item:Reference:System.Xml
//	    condition: "'$(Configuration)'=='Debug'"
//	expect:
//	  version: 3
//	  contains: ["<OutputType>Library</OutputType>"]
//	  properties: { OutputType: Library }
//	  items: { Reference: 1 }
//
// File may replace document; it is resolved against the directory of the
// script.
//
// # Deterministic Runs
//
// Correlation ids come from testutil.SequenceGenerator and every run uses a
// fresh in-memory store, so results and recorded revisions are identical
// across runs.
package harness
