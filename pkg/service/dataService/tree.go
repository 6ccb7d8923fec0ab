package dataService

import (
	"fmt"

	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type NodeKind string

const (
	NodeKind_Site   NodeKind = "site"
	NodeKind_Device NodeKind = "device"
	NodeKind_Point  NodeKind = "point"
)

// UnassignedSiteName labels the site node holding devices whose site is unknown.
const UnassignedSiteName = "Unassigned"

type TreeNode struct {
	Kind NodeKind
	Id   int
	Name string

	// Set on point nodes only.
	Point   *types.DataPoint
	Value   string
	Quality string

	Children *orderedmap.OrderedMap[string, *TreeNode]
}

func newNode(kind NodeKind, id int, name string) *TreeNode {
	return &TreeNode{
		Kind:     kind,
		Id:       id,
		Name:     name,
		Children: orderedmap.New[string, *TreeNode](),
	}
}

func nodeKey(kind NodeKind, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Walk visits the node and its descendants depth first in insertion order.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int)) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(node *TreeNode, depth int), depth int) {
	fn(n, depth)
	for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.walk(fn, depth+1)
	}
}

type DataTree struct {
	Sites *orderedmap.OrderedMap[string, *TreeNode]
	// SkippedPoints counts points whose device is not part of the tree.
	SkippedPoints int
}

func (t *DataTree) Walk(fn func(node *TreeNode, depth int)) {
	for pair := t.Sites.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Walk(fn)
	}
}

// ScaleValue converts a raw register value to engineering units: raw*factor + offset.
// A zero factor is treated as 1.
func ScaleValue(raw decimal.Decimal, factor float64, offset float64) decimal.Decimal {
	f := decimal.NewFromFloat(factor)
	if f.IsZero() {
		f = decimal.NewFromInt(1)
	}
	return raw.Mul(f).Add(decimal.NewFromFloat(offset))
}

// DisplayValue renders the current value of a point. The backend's engineering value wins;
// otherwise a numeric raw value is scaled with the point's factor and offset.
func DisplayValue(point *types.DataPoint, value *types.CurrentValue) string {
	if value == nil {
		return ""
	}
	if !value.Value.IsNull() {
		return value.Value.String()
	}
	raw, ok := value.RawValue.Decimal()
	if !ok {
		return value.RawValue.String()
	}
	if point == nil {
		return raw.String()
	}
	return ScaleValue(raw, point.ScalingFactor, point.ScalingOffset).String()
}

// BuildTree arranges sites, devices and points into a site -> device -> point tree. Every
// level keeps input order. Devices of unknown sites go under an Unassigned site node, which
// is appended last.
func BuildTree(sites []*types.Site, devices []*types.Device, points []*types.DataPoint, values []*types.CurrentValue) *DataTree {
	tree := &DataTree{Sites: orderedmap.New[string, *TreeNode]()}

	for _, site := range sites {
		if site == nil {
			continue
		}
		tree.Sites.Set(nodeKey(NodeKind_Site, site.Id), newNode(NodeKind_Site, site.Id, site.Name))
	}

	var unassigned *TreeNode
	deviceNodes := make(map[int]*TreeNode, len(devices))
	for _, device := range devices {
		if device == nil {
			continue
		}
		siteNode, ok := tree.Sites.Get(nodeKey(NodeKind_Site, device.SiteId))
		if !ok {
			if unassigned == nil {
				unassigned = newNode(NodeKind_Site, 0, UnassignedSiteName)
			}
			siteNode = unassigned
		}
		node := newNode(NodeKind_Device, device.Id, device.Name)
		siteNode.Children.Set(nodeKey(NodeKind_Device, device.Id), node)
		deviceNodes[device.Id] = node
	}
	if unassigned != nil {
		tree.Sites.Set(nodeKey(NodeKind_Site, 0)+":unassigned", unassigned)
	}

	valuesByPoint := make(map[int]*types.CurrentValue, len(values))
	for _, v := range values {
		if v != nil {
			valuesByPoint[v.PointId] = v
		}
	}

	for _, point := range points {
		if point == nil {
			continue
		}
		deviceNode, ok := deviceNodes[point.DeviceId]
		if !ok {
			tree.SkippedPoints++
			continue
		}
		node := newNode(NodeKind_Point, point.Id, point.Name)
		node.Point = point
		if v, ok := valuesByPoint[point.Id]; ok {
			node.Value = DisplayValue(point, v)
			node.Quality = v.Quality
		}
		deviceNode.Children.Set(nodeKey(NodeKind_Point, point.Id), node)
	}
	return tree
}
