package jsx

import (
	"context"
	"testing"

	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appSource = `import React, { useState, useEffect } from "react";

export default function App({ title }) {
  const [count, setCount] = useState(0);
  useEffect(() => {
    document.title = title;
  });
  console.log("render", count);
  return <div onClick={() => setCount(count + 1)}>{title}</div>;
}

const Badge = ({ label }) => {
  const theme = React.useContext(ThemeContext);
  useEffect(() => {}, [label]);
  return <span className={theme}>{label}</span>;
};

function helper(x) {
  return x * 2;
}
`

func TestInspectFunctionComponents(t *testing.T) {
	f, err := Inspect(context.Background(), []byte(appSource), "src/App.jsx", ".jsx")
	require.NoError(t, err)

	assert.True(t, f.IsReact)
	require.Len(t, f.Components, 2)
	assert.Equal(t, "App", f.Components[0].Name)
	assert.Equal(t, 3, f.Components[0].Line)
	assert.ElementsMatch(t, []string{"useState", "useEffect"}, f.Components[0].Hooks)
	assert.Equal(t, "Badge", f.Components[1].Name)
	assert.ElementsMatch(t, []string{"useContext", "useEffect"}, f.Components[1].Hooks)

	assert.Equal(t, 2, f.Hooks["useEffect"])
	assert.Equal(t, 1, f.Hooks["useState"])

	var medium, low int
	for _, finding := range f.Findings {
		assert.Equal(t, schema.CategoryReact, finding.Category)
		switch finding.Tier {
		case schema.MediumRisk:
			medium++
			assert.Equal(t, 5, finding.Line)
		case schema.LowRisk:
			low++
			assert.Equal(t, 8, finding.Line)
		}
	}
	assert.Equal(t, 1, medium)
	assert.Equal(t, 1, low)
}

func TestInspectClassComponentTSX(t *testing.T) {
	src := `import * as React from "react";

interface Props { name: string }

export class Greeting extends React.Component<Props> {
  render() {
    return <h1>Hello {this.props.name}</h1>;
  }
}
`
	f, err := Inspect(context.Background(), []byte(src), "Greeting.tsx", ".tsx")
	require.NoError(t, err)
	assert.True(t, f.IsReact)
	require.Len(t, f.Components, 1)
	assert.Equal(t, "Greeting", f.Components[0].Name)
}

func TestInspectPlainModule(t *testing.T) {
	src := "export function add(a: number, b: number): number {\n  return a + b;\n}\n"
	f, err := Inspect(context.Background(), []byte(src), "math.ts", ".ts")
	require.NoError(t, err)
	assert.False(t, f.IsReact)
	assert.Empty(t, f.Components)
	assert.Empty(t, f.Findings)
}
