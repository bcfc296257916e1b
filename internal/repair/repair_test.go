package repair

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"component-generator/internal/domain"
)

func newTestRepairer(opts ...Option) *Repairer {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func prompt(s string) domain.PromptContext {
	return domain.NewPromptContext(s, "web")
}

func TestRepairAppendsMissingExport(t *testing.T) {
	code := "import React from 'react';\n\nconst Footer = () => {\n  return (\n    <footer>\n      <a href=\"https://facebook.com\">f</a>\n    </footer>\n  );\n};"

	got, err := newTestRepairer().Repair(code, prompt("footer with social icons"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(got, "};\n\nexport default Footer;"))
	require.NoError(t, Verify(got))
}

func TestRepairUnescapesLiteralSequences(t *testing.T) {
	code := `import React from 'react';\n\nconst A = () => {\n  return (<div title=\"x\">It\'s <a href=\"https:\/\/x.dev\">here<\/a><\/div>);\n};\n\nexport default A;`

	got, err := newTestRepairer().Repair(code, prompt("link"))
	require.NoError(t, err)
	require.Contains(t, got, "\n\nconst A = () => {\n")
	require.Contains(t, got, `<div title="x">It's <a href="https://x.dev">here</a></div>`)
	require.NotContains(t, got, `\n`)
}

func TestRepairPrependsAndDeduplicatesImport(t *testing.T) {
	got, err := newTestRepairer().Repair("const Card = () => {\n  return (<p>x</p>);\n};", prompt("card"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "import React from 'react';\n\nconst Card"))

	dup := "import React from 'react';\nimport React from 'react';\nimport { useState } from 'react';\n\nconst Card = () => {\n  return (<p>x</p>);\n};\n\nexport default Card;"
	got, err = newTestRepairer().Repair(dup, prompt("card"))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(got, "from 'react'"))
	require.Contains(t, got, "import React, { useState } from 'react';")
}

func TestRepairMergesReactImports(t *testing.T) {
	body := "\n\nconst Card = () => {\n  return (<p>x</p>);\n};\n\nexport default Card;"
	cases := []struct {
		name    string
		imports string
		want    string
	}{
		{"namespace", "import * as React from 'react';", "import * as React from 'react';"},
		{"named only", "import { useState } from 'react';", "import React, { useState } from 'react';"},
		{"default and named", "import React, { useState, useEffect } from \"react\";", "import React, { useState, useEffect } from 'react';"},
		{"namespace and named", "import * as React from 'react';\nimport { useMemo } from 'react';", "import React, { useMemo } from 'react';"},
		{"split named", "import React from 'react';\nimport { useState } from 'react';\nimport { useState, useRef } from 'react';", "import React, { useState, useRef } from 'react';"},
		{"multi-line named", "import {\n  useState,\n  useEffect,\n} from 'react';", "import React, { useState, useEffect } from 'react';"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := newTestRepairer().Repair(tc.imports+body, prompt("card"))
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(got, tc.want+"\n"), got)
			require.Equal(t, 1, strings.Count(got, "from 'react'"), got)
			require.NoError(t, Verify(got))
		})
	}
}

func TestRepairLeavesOtherImportsAlone(t *testing.T) {
	code := "import type { FC } from 'react';\nimport { Card } from '@/components/ui/card';\nimport './styles.css';\n\nconst Panel: FC = () => {\n  return (<Card>x</Card>);\n};\n\nexport default Panel;"

	got, err := newTestRepairer().Repair(code, prompt("panel"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "import React from 'react';\n\nimport type { FC } from 'react';\n"), got)
	require.Contains(t, got, "import { Card } from '@/components/ui/card';")
	require.Contains(t, got, "import './styles.css';")
}

func TestRepairFormatsSingleLineComponent(t *testing.T) {
	code := "import React from 'react'; const Card = ({title}) => { const s = {padding: '8px'}; return (<div style={s}><h2>{title}</h2><p>Body</p></div>); }; export default Card;"

	got, err := newTestRepairer().Repair(code, prompt("card"))
	require.NoError(t, err)
	want := `import React from 'react';

const Card = ({title}) => {
  const s = {padding: '8px'};

  return (
    <div style={s}>
      <h2>
        {title}
      </h2>
      <p>
        Body
      </p>
    </div>
  );
};

export default Card;`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("formatted component mismatch (-want +got):\n%s", diff)
	}
}

func TestRepairFormatsExportedFunctionDeclaration(t *testing.T) {
	code := "import React from 'react'; export default function Hero({ title }) { return (<section><h1>{title}</h1></section>); }"

	got, err := newTestRepairer().Repair(code, prompt("hero"))
	require.NoError(t, err)
	want := `import React from 'react';

export default function Hero({ title }) {
  return (
    <section>
      <h1>
        {title}
      </h1>
    </section>
  );
}`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("formatted component mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, Verify(got))
}

func TestRepairKeepsNamedExportOnDeclarationLine(t *testing.T) {
	code := "import React from 'react'; const gap = 8; export const Chip = ({ label }) => { return (<span>{label}</span>); };"

	got, err := newTestRepairer().Repair(code, prompt("chip"))
	require.NoError(t, err)
	require.Contains(t, got, "const gap = 8;\n\nexport const Chip = ({ label }) => {\n")
	require.True(t, strings.HasSuffix(got, "  );\n};\n\nexport default Chip;"), got)
}

func TestRepairFormatsFunctionDeclaration(t *testing.T) {
	code := "import React from 'react'; function Badge(props) { return (<span>{props.label}</span>); }"

	got, err := newTestRepairer().Repair(code, prompt("badge"))
	require.NoError(t, err)
	require.Contains(t, got, "function Badge(props) {\n  return (\n    <span>\n")
	require.True(t, strings.HasSuffix(got, "export default Badge;"))
	require.NoError(t, Verify(got))
}

func TestRepairGeneralFormatterFallback(t *testing.T) {
	got, err := newTestRepairer().Repair("function helper() { const a = 1; return a; }", prompt("helper"))
	require.NoError(t, err)
	require.Greater(t, strings.Count(got, "\n"), 4)
	require.Contains(t, got, "export default helper;")
	require.NoError(t, Verify(got))
}

func TestRepairReplacesCodeWithoutDeclaration(t *testing.T) {
	got, err := newTestRepairer().Repair("<div>Just markup</div>", prompt("profile card"))
	require.NoError(t, err)
	require.Contains(t, got, "const ProfileCard = () => {")
	require.Contains(t, got, "export default ProfileCard;")
}

func TestRepairClosesTruncatedJSX(t *testing.T) {
	code := "import React from 'react';\n\nconst Card = () => {\n  return (\n    <div style={{ padding: 8 }}>\n      <p>Hello"

	got, err := newTestRepairer().Repair(code, prompt("card"))
	require.NoError(t, err)
	require.Contains(t, got, "<p>Hello</p>\n  );\n}")
	require.True(t, strings.HasSuffix(got, "\n}\n\nexport default Card;"))
	require.NoError(t, Verify(got))
}

func TestRepairIgnoresComparisonsOutsideJSX(t *testing.T) {
	code := "import React from 'react';\n\nconst Card = () => {\n  return (\n    <p>ok</p>\n  );\n};\n\nfunction within(a, b) {\n  return a <b && b> 0;\n}\n\nexport default Card;"

	got, err := newTestRepairer().Repair(code, prompt("card"))
	require.NoError(t, err)
	require.Equal(t, code, got)
}

func TestRepairDropsUnmatchedClosers(t *testing.T) {
	code := "import React from 'react';\nconst A = () => { return (<b/>); }};\n}\nexport default A;"

	got, err := newTestRepairer().Repair(code, prompt("a"))
	require.NoError(t, err)
	require.Equal(t, strings.Count(got, "{"), strings.Count(got, "}"))
	require.True(t, strings.HasSuffix(got, "export default A;"))
}

func TestRepairSimplifiesOversizedCode(t *testing.T) {
	code := "import React from 'react';\n\nconst BigGrid = () => {\n  return (\n    <div>" +
		strings.Repeat("<span>cell</span>", 40) + "</div>\n  );\n};\n\nexport default BigGrid;"

	got, err := newTestRepairer(WithMaxSize(200)).Repair(code, prompt("big grid"))
	require.NoError(t, err)
	require.Contains(t, got, "// Component simplified due to large size")
	require.Contains(t, got, "const BigGrid = () => {")
	require.Contains(t, got, "export default BigGrid;")
}

func TestRepairInvariantsHoldForHostileInput(t *testing.T) {
	inputs := []string{
		"",
		"}}}{{{",
		"const x = {",
		"export default",
		`import React from 'react'; const A = () => { return (<div>{"{"}</div>`,
		"function App() { return (<div><ul><li>a</li><li>b",
		"const Nav = () => <nav>{items.map(i => <a key={i}>{i}</a>)}</nav>;",
		strings.Repeat("{", 50),
	}
	for _, in := range inputs {
		got, err := newTestRepairer().Repair(in, prompt("hostile input"))
		require.NoError(t, err, "input %q", in)
		require.NoError(t, Verify(got), "input %q", in)
		require.Equal(t, strings.Count(got, "{"), strings.Count(got, "}"), "input %q", in)
	}
}

func TestBalanceBraces(t *testing.T) {
	require.Equal(t, " { }", BalanceBraces("} { }"))
	require.Equal(t, "a {\n}", BalanceBraces("a {"))
	require.Equal(t, "{{}\n}", BalanceBraces("{{}"))
}

func TestComponentName(t *testing.T) {
	name, ok := ComponentName("const styles = {}; const Card = () => null;")
	require.True(t, ok)
	require.Equal(t, "Card", name)

	name, ok = ComponentName("function helper() {}")
	require.True(t, ok)
	require.Equal(t, "helper", name)

	_, ok = ComponentName("<div/>")
	require.False(t, ok)
}

func TestGuardRecoversPanics(t *testing.T) {
	_, err := guard(func(string) string { panic("boom") }, "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestVerify(t *testing.T) {
	require.ErrorIs(t, Verify("const A = 1;"), ErrMalformed)
	err := Verify("import React from 'react';\nconst A = () => {;\nexport default A;")
	require.True(t, errors.Is(err, ErrMalformed))
	require.NoError(t, Verify("import React from 'react';\nconst A = () => {};\nexport default A;"))
}
