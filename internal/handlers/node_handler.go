package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "aisle/internal/errors"
	"aisle/internal/hierarchy"
	"aisle/internal/models"
	"aisle/internal/services"
)

// NodeHandler handles budget node requests.
type NodeHandler struct {
	nodeService  services.NodeServicer
	auditService services.AuditServicer
}

// NewNodeHandler creates a new NodeHandler.
func NewNodeHandler(nodeService services.NodeServicer, auditService services.AuditServicer) *NodeHandler {
	return &NodeHandler{nodeService: nodeService, auditService: auditService}
}

// CreateNodeRequest represents the request payload for creating a node.
// Folders ignore allocated and vendor_id; items ignore color.
type CreateNodeRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=100"`
	Kind      models.NodeKind `json:"kind" binding:"required,node_kind"`
	ParentID  *string         `json:"parent_id"`
	Color     string          `json:"color" binding:"omitempty,hex_color"`
	Allocated decimal.Decimal `json:"allocated"`
	VendorID  *string         `json:"vendor_id"`
}

// UpdateNodeRequest represents the request payload for updating a node.
type UpdateNodeRequest struct {
	Name      *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Notes     *string          `json:"notes" binding:"omitempty,max=2000"`
	Color     *string          `json:"color" binding:"omitempty,hex_color"`
	Allocated *decimal.Decimal `json:"allocated"`
	Spent     *decimal.Decimal `json:"spent"`
	VendorID  *string          `json:"vendor_id"`
}

// MoveNodeRequest represents the request payload for moving a node.
// A null new_parent_id promotes the node to root.
type MoveNodeRequest struct {
	NewParentID *string `json:"new_parent_id"`
}

// ReorderNodeRequest represents the request payload for reordering a node.
type ReorderNodeRequest struct {
	DisplayOrder int `json:"display_order" binding:"min=0"`
}

// DeleteNodeRequest carries the mandatory child policy for a delete.
type DeleteNodeRequest struct {
	ChildPolicy hierarchy.ChildPolicy `json:"child_policy" binding:"required,child_policy"`
}

// CreateNode handles the creation of a folder or item in a scenario.
// @Summary     Create a node
// @Description Create a budget folder or item in a scenario
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Scenario ID"
// @Param       request body CreateNodeRequest true "Node details"
// @Success     201 {object} models.BudgetNode "Node created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Scenario or parent not found"
// @Router      /scenarios/{id}/nodes [post]
func (h *NodeHandler) CreateNode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	scenarioID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var node *models.BudgetNode
	if req.Kind == models.NodeKindFolder {
		node, err = h.nodeService.CreateFolder(userID, scenarioID, req.Name, req.Color, req.ParentID)
	} else {
		node, err = h.nodeService.CreateItem(userID, scenarioID, req.Name, req.ParentID, req.Allocated, req.VendorID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_NODE", "node", node.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "kind": req.Kind})

	c.JSON(http.StatusCreated, gin.H{"node": node})
}

// GetTree handles the retrieval of a scenario's full node tree.
// @Summary     Get scenario tree
// @Description Get the scenario's flat node list plus a rollup card per folder
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Scenario ID"
// @Success     200 {object} services.TreeView "Scenario tree"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Scenario not found"
// @Router      /scenarios/{id}/tree [get]
func (h *NodeHandler) GetTree(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	scenarioID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tree, err := h.nodeService.GetScenarioTree(userID, scenarioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// GetNode handles the retrieval of a single node.
// @Summary     Get node by ID
// @Description Get one budget node by ID
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Node ID"
// @Success     200 {object} models.BudgetNode "Node details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id} [get]
func (h *NodeHandler) GetNode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	node, err := h.nodeService.GetNodeByID(userID, nodeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"node": node})
}

// UpdateNode handles node field updates.
// @Summary     Update a node
// @Description Update a budget node's fields; amounts are rejected on folders
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Node ID"
// @Param       request body UpdateNodeRequest true "Fields to update"
// @Success     200 {object} models.BudgetNode "Node updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id} [put]
func (h *NodeHandler) UpdateNode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	node, err := h.nodeService.UpdateNode(userID, nodeID, services.NodeUpdate{
		Name:      req.Name,
		Notes:     req.Notes,
		Color:     req.Color,
		Allocated: req.Allocated,
		Spent:     req.Spent,
		VendorID:  req.VendorID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_NODE", "node", nodeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"node": node})
}

// CheckMove handles the pure move validation probe.
// @Summary     Check a move
// @Description Validate a move without applying it, for reactive UI gating
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Node ID"
// @Param       request body MoveNodeRequest true "Proposed new parent"
// @Success     200 {object} MessageResponse "Move is legal"
// @Failure     400 {object} ErrorResponse "Move violates the tree invariant"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id}/check-move [post]
func (h *NodeHandler) CheckMove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.nodeService.CheckMove(userID, nodeID, req.NewParentID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Move is valid"})
}

// MoveNode handles re-parenting a node.
// @Summary     Move a node
// @Description Move a node under a new parent folder, or to root with null
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Node ID"
// @Param       request body MoveNodeRequest true "New parent"
// @Success     200 {object} models.BudgetNode "Node moved"
// @Failure     400 {object} ErrorResponse "Move violates the tree invariant"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id}/move [post]
func (h *NodeHandler) MoveNode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	node, err := h.nodeService.MoveNode(userID, nodeID, req.NewParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "MOVE_NODE", "node", nodeID, c.ClientIP(),
		map[string]interface{}{"new_parent_id": req.NewParentID})

	c.JSON(http.StatusOK, gin.H{"node": node})
}

// GetMoveTargets handles listing the folders a node can move into.
// @Summary     Get move targets
// @Description List the folders this node could legally be moved into
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Node ID"
// @Success     200 {array} models.BudgetNode "Candidate folders"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id}/move-targets [get]
func (h *NodeHandler) GetMoveTargets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	targets, err := h.nodeService.MoveTargets(userID, nodeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

// ReorderNode handles changing a node's position among its siblings.
// @Summary     Reorder a node
// @Description Change a node's display order within its sibling group
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Node ID"
// @Param       request body ReorderNodeRequest true "New display order"
// @Success     200 {object} models.BudgetNode "Node reordered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id}/reorder [post]
func (h *NodeHandler) ReorderNode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReorderNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	node, err := h.nodeService.ReorderNode(userID, nodeID, req.DisplayOrder)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"node": node})
}

// DeleteNode handles node deletion under an explicit child policy.
// @Summary     Delete a node
// @Description Delete a node, either re-parenting its children to the grandparent or cascading
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Node ID"
// @Param       request body DeleteNodeRequest true "Child policy: reparent or cascade"
// @Success     200 {object} MessageResponse "Node deleted"
// @Failure     400 {object} ErrorResponse "Missing or unknown child policy"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id} [delete]
func (h *NodeHandler) DeleteNode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeleteNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.ErrInvalidChildPolicy)
		return
	}

	if err := h.nodeService.DeleteNode(userID, nodeID, req.ChildPolicy); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_NODE", "node", nodeID, c.ClientIP(),
		map[string]interface{}{"child_policy": req.ChildPolicy})

	c.JSON(http.StatusOK, gin.H{"message": "Node deleted successfully"})
}

// GetBreadcrumb handles rendering a node's ancestor path.
// @Summary     Get node breadcrumb
// @Description Get the node's ancestor path as a display string
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Node ID"
// @Success     200 {object} MessageResponse "Breadcrumb string"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id}/breadcrumb [get]
func (h *NodeHandler) GetBreadcrumb(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	crumb, err := h.nodeService.Breadcrumb(userID, nodeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breadcrumb": crumb})
}

// GetFolderTotals handles the retrieval of one folder's rollup card.
// @Summary     Get folder totals
// @Description Get a folder's rollup over its direct children
// @Tags        nodes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Folder node ID"
// @Success     200 {object} services.FolderView "Folder rollup"
// @Failure     400 {object} ErrorResponse "Node is not a folder"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Node not found"
// @Router      /nodes/{id}/totals [get]
func (h *NodeHandler) GetFolderTotals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nodeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.nodeService.FolderTotals(userID, nodeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
