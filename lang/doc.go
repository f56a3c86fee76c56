// Package lang renders text from a tag-based macro language.
//
// A template is literal text interleaved with tags:
//
//	<#name#>                      value of name, itself rendered as a template
//	<##name##>                    follow a chain of keys, render the last one
//	<{fn(arg, arg)}>              call a host function
//	<~<+><`T`><-><`F`><?cond?>~>  T unless cond renders "" or "0", else F
//	<~{1,2}<`tpl`><*?, :.><[rows]>~>
//	                              render tpl once per row of rows, joined
//
// Tag names are templates too, so <#<#kind#>.name#> renders the key before
// looking it up. Keys containing dots walk nested mappings when no entry
// has the whole key.
//
// # Evaluation
//
// An [Evaluator] holds a private snapshot of host functions and renders any
// number of trees against [Data] contexts:
//
//	ev, err := lang.MakeEvaluator(builtin.Functions())
//	out, err := ev.Render(ctx, "Hello <#name#>", lang.NewData(map[string]any{"name": "you"}))
//
// Variable values are rendered as templates of their own, so values may
// reference other keys. Each such nesting counts toward a depth limit
// ([DefaultMaxDepth]) that stops runaway self-reference. Unknown variables
// render as their own tag text.
//
// Sibling nodes, cross product rows, and function arguments render
// concurrently; output is always in source order.
//
// # Parsing
//
// [ParseString] parses and caches trees. Trees can also be exchanged as JSON
// ([MarshalNode], [UnmarshalNode]) or printed back to tag syntax
// ([Format]).
package lang
