package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func newApp(db *gorm.DB, media Media) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.FiberErrorHandler})

	app.Get("/tables", ListTablesHandler(db))
	app.Post("/tables", CreateTableHandler(db))
	app.Put("/tables/:id", UpdateTableHandler(db))
	app.Delete("/tables/:id", DeleteTableHandler(db))

	app.Get("/categories", ListCategoriesHandler(db))

	app.Get("/menu-items", ListMenuItemsHandler(db, media))
	app.Get("/menu-items/:id", GetMenuItemHandler(db, media))
	app.Post("/menu-items", CreateMenuItemHandler(db, media))
	app.Put("/menu-items/:id", UpdateMenuItemHandler(db, media))
	app.Delete("/menu-items/:id", DeleteMenuItemHandler(db))
	app.Post("/menu-items/:id/image", UploadMenuItemImageHandler(db, media))

	app.Post("/inventory", CreateInventoryItemHandler(db))
	app.Put("/inventory/:id", UpdateInventoryItemHandler(db))
	return app
}

func do(t *testing.T, app *fiber.App, method, url, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestTables(t *testing.T) {
	db := testutil.NewDB(t)
	app := newApp(db, Media{})
	waiter := testutil.CreateUser(t, db, "wendy", models.RoleWaiter)
	chef := testutil.CreateUser(t, db, "carl", models.RoleChef)

	status, body := do(t, app, "POST", "/tables", `{"number":3,"capacity":4}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created TableResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "free", created.Status)

	status, _ = do(t, app, "POST", "/tables", `{"number":3,"capacity":2}`)
	assert.Equal(t, fiber.StatusBadRequest, status, "duplicate number")

	status, _ = do(t, app, "POST", "/tables", `{"number":4,"capacity":0}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "POST", "/tables", `{"number":5,"capacity":2,"status":"broken"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	url := "/tables/" + itoa(created.ID)
	status, _ = do(t, app, "PUT", url, `{"waiter_id":`+itoa(chef.ID)+`}`)
	assert.Equal(t, fiber.StatusBadRequest, status, "only waiters can be assigned")

	status, body = do(t, app, "PUT", url, `{"waiter_id":`+itoa(waiter.ID)+`,"status":"occupied"}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var updated TableResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	require.NotNil(t, updated.WaiterID)
	assert.Equal(t, waiter.ID, *updated.WaiterID)
	assert.Equal(t, "occupied", updated.Status)

	status, _ = do(t, app, "DELETE", url, "")
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = do(t, app, "DELETE", url, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestMenuItemLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	app := newApp(db, Media{URLPrefix: "/media"})
	cat := models.Category{Name: "Mains"}
	require.NoError(t, db.Create(&cat).Error)

	status, body := do(t, app, "POST", "/menu-items", `{"name":"Burger","price":"9.5","category_id":`+itoa(cat.ID)+`}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var item MenuItemResponse
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, "9.50", item.Price)
	assert.True(t, item.Available)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Mains", item.Category.Name)
	assert.Nil(t, item.Image)

	for _, bad := range []string{
		`{"name":"","price":"1.00"}`,
		`{"name":"Soup","price":"0"}`,
		`{"name":"Soup","price":"1.005"}`,
		`{"name":"Soup","price":"1.00","category_id":999}`,
	} {
		status, _ := do(t, app, "POST", "/menu-items", bad)
		assert.Equal(t, fiber.StatusBadRequest, status, bad)
	}

	url := "/menu-items/" + itoa(item.ID)
	status, body = do(t, app, "PUT", url, `{"available":false,"price":12}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &item))
	assert.False(t, item.Available)
	assert.Equal(t, "12.00", item.Price)
	require.NotNil(t, item.Category, "category kept when not mentioned")

	status, body = do(t, app, "PUT", url, `{"uncategorize":true}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Nil(t, item.Category)
	var stored models.MenuItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Nil(t, stored.CategoryID)

	status, body = do(t, app, "PUT", url, `{"category_id":`+itoa(cat.ID)+`}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &item))
	require.NotNil(t, item.Category)

	status, body = do(t, app, "GET", "/menu-items?available=true", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []MenuItemResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list)

	status, _ = do(t, app, "GET", "/menu-items/999", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeleteMenuItemReferencedByOrder(t *testing.T) {
	db := testutil.NewDB(t)
	app := newApp(db, Media{})
	burger := testutil.CreateMenuItem(t, db, "Burger", "9.00")
	salad := testutil.CreateMenuItem(t, db, "Salad", "6.00")
	require.NoError(t, db.Create(&models.InventoryItem{MenuItemID: salad.ID, Quantity: 3}).Error)

	order := models.Order{Status: models.OrderPending}
	require.NoError(t, db.Omit(clause.Associations).Create(&order).Error)
	require.NoError(t, db.Omit(clause.Associations).Create(&models.OrderItem{OrderID: order.ID, MenuItemID: burger.ID, Quantity: 1}).Error)

	status, _ := do(t, app, "DELETE", "/menu-items/"+itoa(burger.ID), "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = do(t, app, "DELETE", "/menu-items/"+itoa(salad.ID), "")
	assert.Equal(t, fiber.StatusNoContent, status)

	var inv int64
	require.NoError(t, db.Model(&models.InventoryItem{}).Count(&inv).Error)
	assert.Zero(t, inv)
}

func TestUploadMenuItemImage(t *testing.T) {
	db := testutil.NewDB(t)
	dir := t.TempDir()
	app := newApp(db, Media{Path: dir, URLPrefix: "/media"})
	burger := testutil.CreateMenuItem(t, db, "Burger", "9.00")

	upload := func(filename string) (int, []byte) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("not really a png"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest("POST", "/menu-items/"+itoa(burger.ID)+"/image", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, data
	}

	status, _ := upload("burger.exe")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := upload("burger.PNG")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var item MenuItemResponse
	require.NoError(t, json.Unmarshal(body, &item))
	require.NotNil(t, item.Image)
	assert.True(t, strings.HasPrefix(*item.Image, "/media/menu_items/"))
	assert.True(t, strings.HasSuffix(*item.Image, ".png"))

	var stored models.MenuItem
	require.NoError(t, db.First(&stored, burger.ID).Error)
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Image)))
	assert.NoError(t, err)
}

func TestInventory(t *testing.T) {
	db := testutil.NewDB(t)
	app := newApp(db, Media{})
	burger := testutil.CreateMenuItem(t, db, "Burger", "9.00")

	status, body := do(t, app, "POST", "/inventory", `{"menu_item_id":`+itoa(burger.ID)+`,"quantity":10}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var it InventoryItemResponse
	require.NoError(t, json.Unmarshal(body, &it))
	assert.Equal(t, "Burger", it.MenuItemName)

	status, _ = do(t, app, "POST", "/inventory", `{"menu_item_id":`+itoa(burger.ID)+`,"quantity":1}`)
	assert.Equal(t, fiber.StatusBadRequest, status, "one record per menu item")

	status, _ = do(t, app, "POST", "/inventory", `{"menu_item_id":999,"quantity":1}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "PUT", "/inventory/"+itoa(it.ID), `{"quantity":-1}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, "PUT", "/inventory/"+itoa(it.ID), `{"quantity":4}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &it))
	assert.Equal(t, 4, it.Quantity)
}

func TestBadPathID(t *testing.T) {
	db := testutil.NewDB(t)
	app := newApp(db, Media{})

	for url, want := range map[string]string{
		"/menu-items/abc": "invalid menu item id",
		"/menu-items/0":   "invalid menu item id",
		"/tables/x":       "invalid table id",
		"/inventory/-1":   "invalid inventory item id",
	} {
		method := "GET"
		if strings.HasPrefix(url, "/tables") {
			method = "DELETE"
		} else if strings.HasPrefix(url, "/inventory") {
			method = "PUT"
		}
		status, body := do(t, app, method, url, "")
		assert.Equal(t, fiber.StatusBadRequest, status, url)
		var res map[string]string
		require.NoError(t, json.Unmarshal(body, &res), url)
		assert.Equal(t, want, res["error"], url)
	}
}
