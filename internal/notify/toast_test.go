package notify

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardCreatesContainerOnce(t *testing.T) {
	var b Board
	assert.False(t, b.HasContainer())
	assert.Nil(t, b.Toasts())

	b.Show("Đã lưu", Success)
	require.True(t, b.HasContainer())
	first := b.container
	b.Show("Lỗi", Danger)
	b.Show("Chú ý", "")

	assert.Same(t, first, b.container)
	html, err := Render(&b)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(html), `id="`+ContainerID+`"`))
	toasts := b.Toasts()
	require.Len(t, toasts, 3)
	assert.Equal(t, Success, toasts[0].Severity)
	assert.Equal(t, Danger, toasts[1].Severity)
	assert.Equal(t, Info, toasts[2].Severity)
	assert.NotEqual(t, toasts[0].ID, toasts[1].ID)
}

func TestBoardConcurrentShow(t *testing.T) {
	var b Board
	b.Show("x", Info)
	first := b.container
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Show("x", Info)
		}()
	}
	wg.Wait()
	assert.Same(t, first, b.container)
	assert.Len(t, b.Toasts(), 51)
}

func TestNewToastValidatesSeverity(t *testing.T) {
	_, err := NewToast("hi", "purple")
	assert.Error(t, err)

	toast, err := NewToast("hi", " WARNING ")
	require.NoError(t, err)
	assert.Equal(t, Warning, toast.Severity)

	var b Board
	b.Show("fallback", "purple")
	assert.Equal(t, Info, b.Toasts()[0].Severity)
}

func TestToastsReturnsCopy(t *testing.T) {
	var b Board
	b.Show("a", Info)
	toasts := b.Toasts()
	toasts[0].Message = "changed"
	assert.Equal(t, "a", b.Toasts()[0].Message)
}

func TestRender(t *testing.T) {
	var b Board
	html, err := Render(&b)
	require.NoError(t, err)
	assert.Empty(t, html)

	b.Show("Đã lưu <b>đơn</b>", Success)
	b.Show("Có lỗi xảy ra!", Danger)
	html, err = Render(&b)
	require.NoError(t, err)
	out := string(html)

	assert.Equal(t, 1, strings.Count(out, `id="toast-container"`))
	assert.Contains(t, out, ContainerClass)
	assert.Contains(t, out, "bg-success")
	assert.Contains(t, out, "bg-danger")
	assert.Contains(t, out, "&lt;b&gt;đơn&lt;/b&gt;")
	assert.Equal(t, 2, strings.Count(out, `data-bs-dismiss="toast"`))
}
