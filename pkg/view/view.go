// Package view describes what a page shows.
//
// A Node is an inert description of output, produced by View functions and
// rendered by the host. Nodes are values: views build them without side
// effects, and rendering the same node twice gives the same text.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Node is a piece of rendered output.
type Node interface {
	// Render renders the node into lines no wider than width. A width of zero
	// or less means unbounded.
	Render(width int) string
}

// Text is a node showing a string, wrapped to the width.
type Text string

func (t Text) Render(width int) string {
	if width <= 0 {
		return string(t)
	}
	return lipgloss.NewStyle().Width(width).Render(string(t))
}

// Textf is a convenience for Text(fmt.Sprintf(...)).
func Textf(format string, args ...any) Text {
	return Text(fmt.Sprintf(format, args...))
}

type empty struct{}

// Empty is a node that renders to nothing.
var Empty Node = empty{}

func (empty) Render(int) string { return "" }

type column []Node

// Column stacks nodes vertically. Empty nodes take no space.
func Column(nodes ...Node) Node {
	var kept column
	for _, n := range nodes {
		if n != nil && n != Empty {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return Empty
	}
	return kept
}

func (c column) Render(width int) string {
	parts := make([]string, 0, len(c))
	for _, n := range c {
		if s := n.Render(width); s != "" {
			parts = append(parts, s)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

type styled struct {
	style lipgloss.Style
	child Node
}

// Styled applies a lipgloss style to a node.
func Styled(style lipgloss.Style, child Node) Node {
	return styled{style, child}
}

func (s styled) Render(width int) string {
	return s.style.Render(s.child.Render(width))
}

type box struct {
	title string
	child Node
}

// Box draws a border around a node, with an optional title line.
func Box(title string, child Node) Node {
	return box{title, child}
}

func (b box) Render(width int) string {
	frame := Theme.Box
	inner := width - frame.GetHorizontalFrameSize()
	if width <= 0 {
		inner = 0
	}
	body := b.child.Render(inner)
	if b.title != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, Theme.Title.Render(b.title), body)
	}
	if inner > 0 {
		frame = frame.Width(inner + frame.GetHorizontalPadding())
	}
	return frame.Render(body)
}

// Lines renders a node and splits it into lines, with trailing spaces
// removed. It is mostly useful in tests.
func Lines(n Node, width int) []string {
	s := n.Render(width)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines
}
