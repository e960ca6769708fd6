/*
Package patch implements the context-anchored patch engine.

	+-------------+     +-------------+     +-----------------+
	| LinkPatcher |     | TemplateMap |     | SectionInjector |
	|  (values)   |     |  Injector   |     |   (blocks)      |
	+------+------+     +------+------+     +--------+--------+
	       |                   |                     |
	       +---------+---------+----------+----------+
	                 |                    |
	          locate.Anchor        locate.Candidate
	             Locator               Locator

🎯 Purpose:
- Substitute placeholder tokens with resolved mapping values, choosing the
  occurrence by nearby context
- Turn a shared static placeholder into a lookup resolved at render time
- Insert whole blocks before the first of several candidate anchors

🔄 Flow:
Every engine takes the current text and returns new text plus one
PatchResult per step. Nothing here touches the filesystem; callers decide
whether to persist. Operations run in declared order and each one sees the
text left by the previous one.

⚡ Idempotency:
A replaced placeholder is gone from the text, so a second pass cannot find it
and reports StatusWarnedNotFound. Template and section steps check for their
own output first and report StatusSkippedAlreadyApplied. When a History is
given, link operations it remembers are reported as
StatusSkippedAlreadyApplied too.
*/
package patch
