package render

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/nodesched/scheduler/bestfit"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/knapsack"
)

type svgDoc struct {
	Groups []struct {
		ID    string `xml:"id,attr"`
		Rects []struct {
			Width string `xml:"width,attr"`
		} `xml:"rect"`
	} `xml:"g"`
}

func parse(t *testing.T, b []byte) svgDoc {
	doc := svgDoc{}
	require.NoError(t, xml.Unmarshal(b, &doc), string(b))
	return doc
}

func TestTimeline(t *testing.T) {
	res, err := bestfit.Schedule(
		[]domain.Task{{ID: "a", Cost: 100}, {ID: "b<&>", Cost: 50}},
		[]domain.Node{{Name: "n1", Speed: 10, Uptime: 20}, {Name: "n2", Speed: 5, Uptime: 40}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Timeline(&buf, res, ""))
	out := buf.String()
	assert.Contains(t, out, "Time (seconds)")
	assert.Contains(t, out, "Task Scheduling Visualization (2 Nodes)")
	assert.Contains(t, out, "b&lt;&amp;&gt;")

	doc := parse(t, buf.Bytes())
	require.Len(t, doc.Groups, 2)
	assert.Equal(t, "n1", doc.Groups[0].ID)
	placed := len(doc.Groups[0].Rects) + len(doc.Groups[1].Rects)
	assert.Equal(t, 2, placed)
}

func TestCapacityChart(t *testing.T) {
	res, err := knapsack.NewSelector(0).FillNodes(
		[]domain.Task{{ID: "T1", Cost: 1024, Value: 5}, {ID: "T2", Cost: 512, Value: 4}, {ID: "T3", Cost: 128, Value: 1}},
		[]domain.Node{{Name: "nano1", Capacity: 2000}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, CapacityChart(&buf, res, "custom"))
	out := buf.String()
	assert.Contains(t, out, "Capacity Used")
	assert.Contains(t, out, ">custom<")
	assert.Contains(t, out, ">1024<")

	doc := parse(t, buf.Bytes())
	require.Len(t, doc.Groups, 1)
	assert.Len(t, doc.Groups[0].Rects, 3)
	assert.Equal(t, 1, strings.Count(out, `class="limit"`))
}

func TestEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CapacityChart(&buf, &domain.Result{}, ""))
	assert.Empty(t, parse(t, buf.Bytes()).Groups)
}
