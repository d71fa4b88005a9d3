package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/livecad/model"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  a = box(1)\n", "a = box(1)"},
		{"fenced", "Here:\n```python\na = box(1)\n```\nDone.", "a = box(1)"},
		{"bare fence", "```\nb = 2\n```", "b = 2"},
		{"two fences", "```py\na = 1\n```\ntext\n```py\nb = 2\n```", "a = 1\nb = 2"},
		{"empty fence", "```\n\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.in))
		})
	}
}

func TestSuggestRendersPrompt(t *testing.T) {
	m := model.NewMockModel("mock")
	g := New(m)

	// the mock answers with a comment echoing the prompt
	code, err := g.Suggest(context.Background(), "a cube", []string{"a", "b"}, "a = 1")
	require.NoError(t, err)
	assert.Contains(t, code, "Request: a cube")

	require.Len(t, m.Requests, 1)
	req := m.Requests[0]
	assert.Equal(t, DefaultInstructions, req.Instructions)
	prompt := req.LastUserText()
	assert.Contains(t, prompt, "Existing variables: a, b")
	assert.NotContains(t, prompt, "Current script")
}

func TestSuggestIncludesScript(t *testing.T) {
	m := model.NewMockModel("mock")
	g := New(m, func(o *Options) { o.IncludeScript = true })

	_, err := g.Suggest(context.Background(), "a cube", nil, "a = 1")
	require.NoError(t, err)
	prompt := m.Requests[0].LastUserText()
	assert.Contains(t, prompt, "Current script:\na = 1")
	assert.NotContains(t, prompt, "Existing variables")
}

func TestSuggestStripsFences(t *testing.T) {
	m := model.NewMockModel("mock")
	m.AddResponse("Request: cube", "```python\nc = box(2)\n```")
	g := New(m)

	code, err := g.Suggest(context.Background(), "cube", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "c = box(2)", code)
}

func TestSuggestEmptyAnswer(t *testing.T) {
	m := model.NewMockModel("mock")
	m.AddResponse("Request: nothing", "```\n```")
	g := New(m)

	_, err := g.Suggest(context.Background(), "nothing", nil, "")
	assert.ErrorIs(t, err, ErrEmptySuggestion)
}

func TestSuggestLimit(t *testing.T) {
	g := New(model.NewMockModel("mock"), func(o *Options) { o.MaxCalls = 1 })

	_, err := g.Suggest(context.Background(), "one", nil, "")
	require.NoError(t, err)
	_, err = g.Suggest(context.Background(), "two", nil, "")
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, 1, g.Limiter().Count())
	assert.Equal(t, 0, g.Limiter().Remaining())
}

func TestSuggestRejectsEmptyRequest(t *testing.T) {
	g := New(model.NewMockModel("mock"))
	_, err := g.Suggest(context.Background(), "  ", nil, "")
	assert.Error(t, err)
	assert.Equal(t, 0, g.Limiter().Count())
}

func TestLimiterUnlimited(t *testing.T) {
	l := NewLimiter(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Increment())
	}
	assert.Equal(t, 5, l.Count())
	assert.Equal(t, -1, l.Remaining())
}

// MockModelImpl is a testify backed model.Model.
type MockModelImpl struct{ mock.Mock }

func (m *MockModelImpl) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- model.Response{Text: args.String(0), FinishReason: "stop"}
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (m *MockModelImpl) Info() model.Info {
	args := m.Called()
	return args.Get(0).(model.Info)
}

func TestSuggestWithMockedModel(t *testing.T) {
	m := &MockModelImpl{}
	m.On("Info").Return(model.Info{Name: "mocked", Provider: "test"})
	m.On("Generate", mock.Anything, mock.MatchedBy(func(req model.Request) bool {
		return req.Instructions == "only code" && len(req.Messages) == 1 && req.Messages[0].Role == model.RoleUser
	})).Return("```\nc = box(3)\n```", nil).Once()

	g := New(m, func(o *Options) { o.Instructions = "only code" })
	code, err := g.Suggest(context.Background(), "a big box", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "c = box(3)", code)
	m.AssertExpectations(t)
}

func TestSuggestModelError(t *testing.T) {
	m := &MockModelImpl{}
	m.On("Info").Return(model.Info{Name: "mocked"})
	m.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

	_, err := New(m).Suggest(context.Background(), "a box", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
