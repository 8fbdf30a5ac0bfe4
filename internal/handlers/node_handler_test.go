package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "aisle/internal/errors"
	"aisle/internal/hierarchy"
	"aisle/internal/models"
	"aisle/internal/services"
)

// --- mock node service ---

type mockNodeService struct {
	createFolderFn    func(userID, scenarioID, name, color string, parentID *string) (*models.BudgetNode, error)
	createItemFn      func(userID, scenarioID, name string, parentID *string, allocated decimal.Decimal, vendorID *string) (*models.BudgetNode, error)
	getNodeByIDFn     func(userID, nodeID string) (*models.BudgetNode, error)
	getScenarioTreeFn func(userID, scenarioID string) (*services.TreeView, error)
	updateNodeFn      func(userID, nodeID string, update services.NodeUpdate) (*models.BudgetNode, error)
	reorderNodeFn     func(userID, nodeID string, displayOrder int) (*models.BudgetNode, error)
	checkMoveFn       func(userID, nodeID string, newParentID *string) error
	moveNodeFn        func(userID, nodeID string, newParentID *string) (*models.BudgetNode, error)
	moveTargetsFn     func(userID, nodeID string) ([]models.BudgetNode, error)
	deleteNodeFn      func(userID, nodeID string, policy hierarchy.ChildPolicy) error
	breadcrumbFn      func(userID, nodeID string) (string, error)
	folderTotalsFn    func(userID, folderID string) (*services.FolderView, error)
}

func (m *mockNodeService) CreateFolder(userID, scenarioID, name, color string, parentID *string) (*models.BudgetNode, error) {
	if m.createFolderFn != nil {
		return m.createFolderFn(userID, scenarioID, name, color, parentID)
	}
	return &models.BudgetNode{}, nil
}

func (m *mockNodeService) CreateItem(userID, scenarioID, name string, parentID *string, allocated decimal.Decimal, vendorID *string) (*models.BudgetNode, error) {
	if m.createItemFn != nil {
		return m.createItemFn(userID, scenarioID, name, parentID, allocated, vendorID)
	}
	return &models.BudgetNode{}, nil
}

func (m *mockNodeService) GetNodeByID(userID, nodeID string) (*models.BudgetNode, error) {
	if m.getNodeByIDFn != nil {
		return m.getNodeByIDFn(userID, nodeID)
	}
	return &models.BudgetNode{}, nil
}

func (m *mockNodeService) GetScenarioTree(userID, scenarioID string) (*services.TreeView, error) {
	if m.getScenarioTreeFn != nil {
		return m.getScenarioTreeFn(userID, scenarioID)
	}
	return &services.TreeView{}, nil
}

func (m *mockNodeService) UpdateNode(userID, nodeID string, update services.NodeUpdate) (*models.BudgetNode, error) {
	if m.updateNodeFn != nil {
		return m.updateNodeFn(userID, nodeID, update)
	}
	return &models.BudgetNode{}, nil
}

func (m *mockNodeService) ReorderNode(userID, nodeID string, displayOrder int) (*models.BudgetNode, error) {
	if m.reorderNodeFn != nil {
		return m.reorderNodeFn(userID, nodeID, displayOrder)
	}
	return &models.BudgetNode{}, nil
}

func (m *mockNodeService) CheckMove(userID, nodeID string, newParentID *string) error {
	if m.checkMoveFn != nil {
		return m.checkMoveFn(userID, nodeID, newParentID)
	}
	return nil
}

func (m *mockNodeService) MoveNode(userID, nodeID string, newParentID *string) (*models.BudgetNode, error) {
	if m.moveNodeFn != nil {
		return m.moveNodeFn(userID, nodeID, newParentID)
	}
	return &models.BudgetNode{}, nil
}

func (m *mockNodeService) MoveTargets(userID, nodeID string) ([]models.BudgetNode, error) {
	if m.moveTargetsFn != nil {
		return m.moveTargetsFn(userID, nodeID)
	}
	return []models.BudgetNode{}, nil
}

func (m *mockNodeService) DeleteNode(userID, nodeID string, policy hierarchy.ChildPolicy) error {
	if m.deleteNodeFn != nil {
		return m.deleteNodeFn(userID, nodeID, policy)
	}
	return nil
}

func (m *mockNodeService) Breadcrumb(userID, nodeID string) (string, error) {
	if m.breadcrumbFn != nil {
		return m.breadcrumbFn(userID, nodeID)
	}
	return "", nil
}

func (m *mockNodeService) FolderTotals(userID, folderID string) (*services.FolderView, error) {
	if m.folderTotalsFn != nil {
		return m.folderTotalsFn(userID, folderID)
	}
	return &services.FolderView{}, nil
}

var _ services.NodeServicer = (*mockNodeService)(nil)

const (
	testScenarioID = "0192d5a1-0000-7000-8000-00000000000a"
	testNodeID     = "0192d5a1-0000-7000-8000-00000000000b"
	testFolderID   = "0192d5a1-0000-7000-8000-00000000000c"
)

func setupNodeRouter(handler *NodeHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/scenarios/:id/nodes", handler.CreateNode)
	auth.GET("/scenarios/:id/tree", handler.GetTree)
	auth.GET("/nodes/:id", handler.GetNode)
	auth.PUT("/nodes/:id", handler.UpdateNode)
	auth.POST("/nodes/:id/check-move", handler.CheckMove)
	auth.POST("/nodes/:id/move", handler.MoveNode)
	auth.GET("/nodes/:id/move-targets", handler.GetMoveTargets)
	auth.POST("/nodes/:id/reorder", handler.ReorderNode)
	auth.DELETE("/nodes/:id", handler.DeleteNode)
	auth.GET("/nodes/:id/breadcrumb", handler.GetBreadcrumb)
	auth.GET("/nodes/:id/totals", handler.GetFolderTotals)
	return r
}

func TestNodeHandler_CreateNode(t *testing.T) {
	t.Run("creates a folder", func(t *testing.T) {
		svc := &mockNodeService{
			createFolderFn: func(_, scenarioID, name, _ string, _ *string) (*models.BudgetNode, error) {
				return &models.BudgetNode{
					Base:       models.Base{ID: testFolderID},
					ScenarioID: scenarioID,
					Name:       name,
					Kind:       models.NodeKindFolder,
				}, nil
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "POST", "/scenarios/"+testScenarioID+"/nodes",
			`{"name":"Venue","kind":"folder"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		node := result["node"].(map[string]interface{})
		if node["name"] != "Venue" {
			t.Errorf("expected Venue, got %v", node["name"])
		}
	})

	t.Run("creates an item with allocation", func(t *testing.T) {
		svc := &mockNodeService{
			createItemFn: func(_, _, name string, _ *string, allocated decimal.Decimal, _ *string) (*models.BudgetNode, error) {
				return &models.BudgetNode{
					Base:      models.Base{ID: testNodeID},
					Name:      name,
					Kind:      models.NodeKindItem,
					Allocated: allocated,
				}, nil
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "POST", "/scenarios/"+testScenarioID+"/nodes",
			`{"name":"Photographer","kind":"item","allocated":"3500"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on unknown kind", func(t *testing.T) {
		handler := NewNodeHandler(&mockNodeService{}, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "POST", "/scenarios/"+testScenarioID+"/nodes",
			`{"name":"Bad","kind":"bucket"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNodeHandler_MoveNode(t *testing.T) {
	t.Run("returns 200 on legal move", func(t *testing.T) {
		svc := &mockNodeService{
			moveNodeFn: func(_, nodeID string, newParentID *string) (*models.BudgetNode, error) {
				return &models.BudgetNode{Base: models.Base{ID: nodeID}, ParentID: newParentID}, nil
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "POST", "/nodes/"+testNodeID+"/move",
			`{"new_parent_id":"`+testFolderID+`"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 with CIRCULAR_REFERENCE on cycle", func(t *testing.T) {
		svc := &mockNodeService{
			moveNodeFn: func(_, _ string, _ *string) (*models.BudgetNode, error) {
				return nil, apperrors.ErrCircularReference
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "POST", "/nodes/"+testNodeID+"/move",
			`{"new_parent_id":"`+testFolderID+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		errObj := result["error"].(map[string]interface{})
		if errObj["code"] != "CIRCULAR_REFERENCE" {
			t.Errorf("expected CIRCULAR_REFERENCE, got %v", errObj["code"])
		}
	})

	t.Run("null parent promotes to root", func(t *testing.T) {
		sentinel := testFolderID
		gotParent := &sentinel
		svc := &mockNodeService{
			moveNodeFn: func(_, nodeID string, newParentID *string) (*models.BudgetNode, error) {
				gotParent = newParentID
				return &models.BudgetNode{Base: models.Base{ID: nodeID}}, nil
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "POST", "/nodes/"+testNodeID+"/move", `{"new_parent_id":null}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotParent != nil {
			t.Error("null new_parent_id should reach the service as nil")
		}
	})
}

func TestNodeHandler_DeleteNode(t *testing.T) {
	t.Run("passes the child policy through", func(t *testing.T) {
		var gotPolicy hierarchy.ChildPolicy
		svc := &mockNodeService{
			deleteNodeFn: func(_, _ string, policy hierarchy.ChildPolicy) error {
				gotPolicy = policy
				return nil
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "DELETE", "/nodes/"+testNodeID, `{"child_policy":"cascade"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPolicy != hierarchy.CascadeDelete {
			t.Errorf("expected cascade policy, got %q", gotPolicy)
		}
	})

	t.Run("returns 400 when policy is missing", func(t *testing.T) {
		handler := NewNodeHandler(&mockNodeService{}, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "DELETE", "/nodes/"+testNodeID, `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		errObj := result["error"].(map[string]interface{})
		if errObj["code"] != "INVALID_CHILD_POLICY" {
			t.Errorf("expected INVALID_CHILD_POLICY, got %v", errObj["code"])
		}
	})

	t.Run("returns 400 on unknown policy", func(t *testing.T) {
		handler := NewNodeHandler(&mockNodeService{}, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "DELETE", "/nodes/"+testNodeID, `{"child_policy":"orphan"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNodeHandler_GetTree(t *testing.T) {
	svc := &mockNodeService{
		getScenarioTreeFn: func(_, scenarioID string) (*services.TreeView, error) {
			return &services.TreeView{
				ScenarioID: scenarioID,
				Nodes:      []models.BudgetNode{{Base: models.Base{ID: testFolderID}, Kind: models.NodeKindFolder}},
				Folders: []services.FolderView{{
					Allocated:    decimal.NewFromInt(5000),
					PercentSpent: 0.4,
					ItemCount:    3,
				}},
			}, nil
		},
	}
	handler := NewNodeHandler(svc, &mockAuditService{})
	r := setupNodeRouter(handler)

	rec := doRequest(r, "GET", "/scenarios/"+testScenarioID+"/tree", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	folders := result["folders"].([]interface{})
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder card, got %d", len(folders))
	}
}

func TestNodeHandler_GetFolderTotals(t *testing.T) {
	t.Run("returns 400 for items", func(t *testing.T) {
		svc := &mockNodeService{
			folderTotalsFn: func(_, _ string) (*services.FolderView, error) {
				return nil, apperrors.ErrNodeNotFolder
			},
		}
		handler := NewNodeHandler(svc, &mockAuditService{})
		r := setupNodeRouter(handler)

		rec := doRequest(r, "GET", "/nodes/"+testNodeID+"/totals", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNodeHandler_InvalidPathID(t *testing.T) {
	handler := NewNodeHandler(&mockNodeService{}, &mockAuditService{})
	r := setupNodeRouter(handler)

	rec := doRequest(r, "GET", "/nodes/not-a-uuid", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
