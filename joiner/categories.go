package joiner

import (
	"sort"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// CategoryNode is one row of the flat category tree view: a category, the
// name of its parent (empty at the root) and the products filed under it.
type CategoryNode struct {
	CategoryName string
	ParentName   string
	ProductNames []string
}

// CategoryTree resolves every category's parent name one level up and rolls
// the product names under each (category, parent) pair. Rows come back
// sorted by category then parent name.
func CategoryTree(categories []models.Category, products []models.Product) []CategoryNode {
	namesByID := make(map[int64]string, len(categories))
	for _, c := range categories {
		namesByID[c.ID] = c.Name
	}

	nodes := make(map[int64]*CategoryNode, len(categories))
	for _, c := range categories {
		parent := ""
		if c.ParentID.Valid {
			parent = namesByID[c.ParentID.Int64]
		}
		nodes[c.ID] = &CategoryNode{CategoryName: c.Name, ParentName: parent}
	}

	for _, p := range products {
		if node, ok := nodes[p.CategoryID]; ok {
			node.ProductNames = append(node.ProductNames, p.Name)
		}
	}

	tree := make([]CategoryNode, 0, len(nodes))
	for _, node := range nodes {
		sort.Strings(node.ProductNames)
		tree = append(tree, *node)
	}
	sort.Slice(tree, func(i, j int) bool {
		if tree[i].CategoryName != tree[j].CategoryName {
			return tree[i].CategoryName < tree[j].CategoryName
		}
		return tree[i].ParentName < tree[j].ParentName
	})
	return tree
}
