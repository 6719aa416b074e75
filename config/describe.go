package config

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// Schema describes the JSON accepted by Read.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

// CoursesString prints out a table of each course, with columns of name, start, waypoints and end.
func (c *Config) CoursesString() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Start", "Waypoints", "End"})
	for i, name := range c.CourseNames() {
		course := c.Courses[name]
		waypoints := lo.Map(course.Waypoints, func(p Point, _ int) string {
			return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
		})
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i+1),
			name,
			course.Start.String(),
			strings.Join(waypoints, " "),
			course.End.String(),
		})
	}
	return t.Render()
}

func (p Pose) String() string {
	return fmt.Sprintf("X:%.2f, Y:%.2f, Heading:%.0f", p.X, p.Y, p.HeadingDegrees)
}
