package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "aisle/internal/errors"
	"aisle/internal/hierarchy"
	"aisle/internal/models"
	"aisle/internal/uuid"
)

// breadcrumbSeparator joins ancestor names in breadcrumb strings.
const breadcrumbSeparator = " > "

// nodeService handles budget node business logic. It is the single
// writer for each scenario's tree: every structural mutation runs the
// hierarchy engine against a snapshot loaded inside the same database
// transaction that persists the change.
type nodeService struct {
	db       *gorm.DB
	payments PaymentServicer
}

// NewNodeService creates a new NodeServicer.
func NewNodeService(db *gorm.DB, payments PaymentServicer) NodeServicer {
	return &nodeService{db: db, payments: payments}
}

// toEngineNode converts a persisted node into the engine's view.
func toEngineNode(n models.BudgetNode) hierarchy.Node {
	return hierarchy.Node{
		ID:           n.ID,
		ParentID:     n.ParentID,
		Name:         n.Name,
		IsFolder:     n.IsFolder(),
		Allocated:    n.Allocated,
		Spent:        n.Spent,
		DisplayOrder: n.DisplayOrder,
	}
}

// loadSnapshot builds an engine snapshot over all nodes of a scenario.
func loadSnapshot(tx *gorm.DB, scenarioID string) (*hierarchy.Snapshot, error) {
	var nodes []models.BudgetNode
	if err := tx.Where("scenario_id = ?", scenarioID).Find(&nodes).Error; err != nil {
		return nil, err
	}
	engineNodes := make([]hierarchy.Node, len(nodes))
	for i, n := range nodes {
		engineNodes[i] = toEngineNode(n)
	}
	return hierarchy.NewSnapshot(engineNodes), nil
}

// mapHierarchyErr translates engine sentinels into the API taxonomy.
func mapHierarchyErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hierarchy.ErrUnknownNode):
		return apperrors.ErrNodeNotFound
	case errors.Is(err, hierarchy.ErrSelfReference):
		return apperrors.ErrSelfParentNode
	case errors.Is(err, hierarchy.ErrCircularReference):
		return apperrors.ErrCircularReference
	case errors.Is(err, hierarchy.ErrInvalidTarget):
		return apperrors.ErrInvalidMoveTarget
	case errors.Is(err, hierarchy.ErrUnknownPolicy):
		return apperrors.ErrInvalidChildPolicy
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// effectiveFunc adapts the payment ledger to the engine's callback. A
// node with ledger entries reports the settled ledger total; a node
// without any reports its manually entered spent amount.
func effectiveFunc(ledger map[string]decimal.Decimal) hierarchy.EffectiveSpentFunc {
	return func(n hierarchy.Node) decimal.Decimal {
		if v, ok := ledger[n.ID]; ok {
			return v
		}
		return n.Spent
	}
}

// verifyScenario checks that the scenario exists and belongs to the user.
func (s *nodeService) verifyScenario(userID, scenarioID string) error {
	var count int64
	if err := s.db.Model(&models.Scenario{}).Where("id = ? AND user_id = ?", scenarioID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrScenarioNotFound
	}
	return nil
}

// GetNodeByID retrieves a node after verifying scenario ownership.
// Ownership failures read as not-found so node IDs don't leak across
// accounts.
func (s *nodeService) GetNodeByID(userID, nodeID string) (*models.BudgetNode, error) {
	var node models.BudgetNode
	if err := s.db.Where("id = ?", nodeID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNodeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.verifyScenario(userID, node.ScenarioID); err != nil {
		return nil, apperrors.ErrNodeNotFound
	}
	return &node, nil
}

// checkParent verifies that a proposed parent exists in the scenario
// and is a folder.
func (s *nodeService) checkParent(scenarioID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	var parent models.BudgetNode
	if err := s.db.Where("id = ? AND scenario_id = ?", *parentID, scenarioID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrNodeNotFound, "parent node not found")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !parent.IsFolder() {
		return apperrors.WithMessage(apperrors.ErrNodeNotFolder, "parent must be a folder")
	}
	return nil
}

// nextDisplayOrder places a new node after its future siblings.
func (s *nodeService) nextDisplayOrder(scenarioID string, parentID *string) int {
	query := s.db.Model(&models.BudgetNode{}).Where("scenario_id = ?", scenarioID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0
	}
	return int(count)
}

// CreateFolder creates a grouping folder in a scenario.
func (s *nodeService) CreateFolder(userID, scenarioID, name, color string, parentID *string) (*models.BudgetNode, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "folder name is required")
	}
	if err := s.verifyScenario(userID, scenarioID); err != nil {
		return nil, err
	}
	if err := s.checkParent(scenarioID, parentID); err != nil {
		return nil, err
	}

	// The ID is generated up front so the fallback display color can be
	// derived from it deterministically.
	id := uuid.New()
	if color == "" {
		color = hierarchy.FolderColor(id)
	}

	node := &models.BudgetNode{
		Base:         models.Base{ID: id},
		ScenarioID:   scenarioID,
		ParentID:     parentID,
		Name:         name,
		Kind:         models.NodeKindFolder,
		Color:        color,
		Allocated:    decimal.Zero,
		Spent:        decimal.Zero,
		DisplayOrder: s.nextDisplayOrder(scenarioID, parentID),
	}

	if err := s.db.Create(node).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return node, nil
}

// CreateItem creates a budget line item in a scenario.
func (s *nodeService) CreateItem(userID, scenarioID, name string, parentID *string, allocated decimal.Decimal, vendorID *string) (*models.BudgetNode, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item name is required")
	}
	if allocated.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated amount cannot be negative")
	}
	if err := s.verifyScenario(userID, scenarioID); err != nil {
		return nil, err
	}
	if err := s.checkParent(scenarioID, parentID); err != nil {
		return nil, err
	}
	if vendorID != nil {
		var count int64
		if err := s.db.Model(&models.Vendor{}).Where("id = ? AND user_id = ?", *vendorID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrVendorNotFound
		}
	}

	node := &models.BudgetNode{
		ScenarioID:   scenarioID,
		ParentID:     parentID,
		Name:         name,
		Kind:         models.NodeKindItem,
		Allocated:    allocated,
		Spent:        decimal.Zero,
		VendorID:     vendorID,
		DisplayOrder: s.nextDisplayOrder(scenarioID, parentID),
	}

	if err := s.db.Create(node).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return node, nil
}

// GetScenarioTree returns the scenario's full flat node list plus a
// rollup card for every folder.
func (s *nodeService) GetScenarioTree(userID, scenarioID string) (*TreeView, error) {
	if err := s.verifyScenario(userID, scenarioID); err != nil {
		return nil, err
	}

	var nodes []models.BudgetNode
	if err := s.db.Where("scenario_id = ?", scenarioID).Order("display_order ASC, id ASC").Find(&nodes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ledger, err := s.payments.EffectiveSpentByNode(scenarioID)
	if err != nil {
		return nil, err
	}

	engineNodes := make([]hierarchy.Node, len(nodes))
	for i, n := range nodes {
		engineNodes[i] = toEngineNode(n)
	}
	snapshot := hierarchy.NewSnapshot(engineNodes)
	effective := effectiveFunc(ledger)

	tree := &TreeView{ScenarioID: scenarioID, Nodes: nodes, Folders: []FolderView{}}
	for _, n := range nodes {
		if !n.IsFolder() {
			continue
		}
		tree.Folders = append(tree.Folders, folderView(snapshot, n, effective))
	}
	return tree, nil
}

// displayPath renders the full breadcrumb for a node: its ancestors
// followed by the node itself. The engine's Breadcrumb is ancestors
// only; display surfaces always show the node at the end of the trail.
func displayPath(snapshot *hierarchy.Snapshot, node models.BudgetNode) string {
	crumb := snapshot.Breadcrumb(node.ID, breadcrumbSeparator)
	if crumb == "" {
		return node.Name
	}
	return crumb + breadcrumbSeparator + node.Name
}

// folderView assembles one folder card from the snapshot.
func folderView(snapshot *hierarchy.Snapshot, node models.BudgetNode, effective hierarchy.EffectiveSpentFunc) FolderView {
	totals := snapshot.FolderTotals(node.ID, effective)
	color := node.Color
	if color == "" {
		color = hierarchy.FolderColor(node.ID)
	}
	return FolderView{
		Node:           node,
		Allocated:      totals.Allocated,
		Spent:          totals.Spent,
		EffectiveSpent: totals.EffectiveSpent,
		PercentSpent:   totals.PercentSpent(),
		ItemCount:      totals.ItemCount,
		Breadcrumb:     displayPath(snapshot, node),
		Color:          color,
	}
}

// UpdateNode applies the given field updates to a node. Monetary
// fields are rejected on folders, which derive their totals from
// children.
func (s *nodeService) UpdateNode(userID, nodeID string, update NodeUpdate) (*models.BudgetNode, error) {
	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return nil, err
	}

	if node.IsFolder() && (update.Allocated != nil || update.Spent != nil) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "folders derive their totals from children")
	}
	if node.IsFolder() && update.VendorID != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vendors attach to items, not folders")
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		if *update.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "node name cannot be empty")
		}
		updates["name"] = *update.Name
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Allocated != nil {
		if update.Allocated.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated amount cannot be negative")
		}
		updates["allocated"] = *update.Allocated
	}
	if update.Spent != nil {
		if update.Spent.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "spent amount cannot be negative")
		}
		updates["spent"] = *update.Spent
	}
	if update.VendorID != nil {
		var count int64
		if err := s.db.Model(&models.Vendor{}).Where("id = ? AND user_id = ?", *update.VendorID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrVendorNotFound
		}
		updates["vendor_id"] = *update.VendorID
	}

	if len(updates) > 0 {
		if err := s.db.Model(node).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return node, nil
}

// ReorderNode changes a node's position within its sibling group.
func (s *nodeService) ReorderNode(userID, nodeID string, displayOrder int) (*models.BudgetNode, error) {
	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return nil, err
	}
	if displayOrder < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "display order cannot be negative")
	}
	if err := s.db.Model(node).Update("display_order", displayOrder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return node, nil
}

// CheckMove is the pure move predicate: it validates without mutating,
// so clients can enable or disable a Move control reactively.
func (s *nodeService) CheckMove(userID, nodeID string, newParentID *string) error {
	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return err
	}
	snapshot, err := loadSnapshot(s.db, node.ScenarioID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return mapHierarchyErr(snapshot.ValidateMove(nodeID, newParentID))
}

// MoveNode re-parents a node. The snapshot is loaded and validated
// inside the same transaction that persists the change, so the forest
// invariant cannot be broken by a concurrent mutation.
func (s *nodeService) MoveNode(userID, nodeID string, newParentID *string) (*models.BudgetNode, error) {
	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		snapshot, err := loadSnapshot(tx, node.ScenarioID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := snapshot.ApplyMove(nodeID, newParentID); err != nil {
			return mapHierarchyErr(err)
		}
		if err := tx.Model(&models.BudgetNode{}).Where("id = ?", nodeID).Update("parent_id", newParentID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	node.ParentID = newParentID
	return node, nil
}

// MoveTargets lists the folders a node could legally be moved into:
// every folder of the scenario except the node itself, its
// descendants, and its current parent.
func (s *nodeService) MoveTargets(userID, nodeID string) ([]models.BudgetNode, error) {
	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return nil, err
	}

	snapshot, err := loadSnapshot(s.db, node.ScenarioID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	excluded := snapshot.Descendants(nodeID)

	var folders []models.BudgetNode
	if err := s.db.Where("scenario_id = ? AND kind = ?", node.ScenarioID, models.NodeKindFolder).
		Order("display_order ASC, id ASC").Find(&folders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	targets := make([]models.BudgetNode, 0, len(folders))
	for _, f := range folders {
		if f.ID == nodeID {
			continue
		}
		if _, isDescendant := excluded[f.ID]; isDescendant {
			continue
		}
		if node.ParentID != nil && f.ID == *node.ParentID {
			continue
		}
		targets = append(targets, f)
	}
	return targets, nil
}

// DeleteNode removes a node under an explicit child policy. Reparented
// children and cascade victims are persisted in one transaction.
func (s *nodeService) DeleteNode(userID, nodeID string, policy hierarchy.ChildPolicy) error {
	if !policy.Valid() {
		return apperrors.ErrInvalidChildPolicy
	}

	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		snapshot, err := loadSnapshot(tx, node.ScenarioID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		removed, err := snapshot.ApplyDelete(nodeID, policy)
		if err != nil {
			return mapHierarchyErr(err)
		}

		if policy == hierarchy.ReparentToGrandparent {
			if err := tx.Model(&models.BudgetNode{}).
				Where("scenario_id = ? AND parent_id = ?", node.ScenarioID, nodeID).
				Update("parent_id", node.ParentID).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Where("node_id IN ?", removed).Delete(&models.Payment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id IN ?", removed).Delete(&models.BudgetNode{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Breadcrumb renders the node's ancestor path as a display string.
func (s *nodeService) Breadcrumb(userID, nodeID string) (string, error) {
	node, err := s.GetNodeByID(userID, nodeID)
	if err != nil {
		return "", err
	}
	snapshot, err := loadSnapshot(s.db, node.ScenarioID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return displayPath(snapshot, *node), nil
}

// FolderTotals returns the rollup card for a single folder.
func (s *nodeService) FolderTotals(userID, folderID string) (*FolderView, error) {
	node, err := s.GetNodeByID(userID, folderID)
	if err != nil {
		return nil, err
	}
	if !node.IsFolder() {
		return nil, apperrors.ErrNodeNotFolder
	}

	snapshot, err := loadSnapshot(s.db, node.ScenarioID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	ledger, err := s.payments.EffectiveSpentByNode(node.ScenarioID)
	if err != nil {
		return nil, err
	}

	view := folderView(snapshot, *node, effectiveFunc(ledger))
	return &view, nil
}
