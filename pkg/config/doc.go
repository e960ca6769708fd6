/*
Package config loads the patch table for anchorpatch.

	            +--------------+
	            |    Config    |
	            | (patch table)|
	            +------+-------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Declares which documents get which operations, as data
- Validates the table and fills in defaults
- Groups operations into per-document plans

🔄 Flow:
1. Reads the config file and picks a parser by extension
2. Decodes with unknown fields rejected
3. Validates, sets defaults, resolves paths against the config directory
4. Hands out one Plan per document

📝 Table shape (YAML):

	root: output
	mapping:
	  path: config/affiliate_links.json
	  field: url
	ignore: ["drafts/**"]
	documents:
	  - id: tools/salary-calculator/index.html
	    links:
	      - anchor: LHH転職エージェント
	        placeholder: 'href="#"'
	        key: lhh_agent
	templates:
	  - document: tools/sim-comparison/index.html
	    declaration_anchor: 'let currentSort="price";'
	    placeholder_literal: '<a href="#" class="btn-official">公式サイト</a>'
	    lookup: p.provider
	    default_key: sim_default
	    entries: { povo: sim_povo }
	sections:
	  - name: related-tools
	    marker: related-tools
	    anchors: ['<p class="note">', '<footer']
	    documents:
	      tools/salary-calculator/index.html: '<div class="related-tools">...</div>'

🔍 Example:

	cfg, err := config.Load(ctx, "anchorpatch.yaml")
	if err != nil {
		return err
	}
	for _, plan := range cfg.Plans() {
		// patch plan.DocumentID
	}
*/
package config
