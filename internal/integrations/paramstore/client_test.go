package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut   *ssm.GetParameterOutput
	getErr   error
	lastName string
	decrypt  bool
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if in.Name != nil {
		f.lastName = *in.Name
	}
	if in.WithDecryption != nil {
		f.decrypt = *in.WithDecryption
	}
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func valueAPI(v string) *fakeAPI {
	return &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(v), Type: types.ParameterTypeSecureString,
	}}}
}

func TestParameter_HappyPath(t *testing.T) {
	api := valueAPI("sk-raw")
	client, err := New(api)
	require.NoError(t, err)

	v, err := client.Parameter(context.Background(), " /component-generator/upstream-key ")
	require.NoError(t, err)
	require.Equal(t, "sk-raw", v)
	require.Equal(t, "/component-generator/upstream-key", api.lastName)
	require.True(t, api.decrypt)
}

func TestParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.Parameter(context.Background(), "p")
	require.ErrorContains(t, err, "missing value")
}

func TestParameter_ApiError(t *testing.T) {
	client, err := New(&fakeAPI{getErr: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.Parameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).Parameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")
}

func TestParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.Parameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestToken(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		want    string
		wantErr string
	}{
		{"bare key", " sk-bare\n", "sk-bare", ""},
		{"json token", `{"token":"sk-from-json"}`, "sk-from-json", ""},
		{"json without token", `{"other":"value"}`, "", "token field is empty"},
		{"malformed json", `{"broken`, "", "unmarshal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := New(valueAPI(tc.value))
			require.NoError(t, err)
			got, err := client.Token(context.Background(), "p")
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
