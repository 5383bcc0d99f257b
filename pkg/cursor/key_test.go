package cursor

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "/members"},
			want: "ytdata:cursor:members",
		},
		{
			name: "params sorted",
			key: Key{
				Endpoint: "/members/",
				Params: url.Values{
					"part": []string{"snippet"},
					"mode": []string{"updates"},
				},
			},
			want: "ytdata:cursor:members:mode=updates:part=snippet",
		},
		{
			name: "multi-valued param joined",
			key: Key{
				Endpoint: "/members",
				Params:   url.Values{"filterByMemberChannelId": []string{"UC1", "UC2"}},
			},
			want: "ytdata:cursor:members:filterByMemberChannelId=UC1,UC2",
		},
		{
			name: "owner",
			key: Key{
				Endpoint: "/members",
				Owner:    "UCowner",
			},
			want: "ytdata:cursor:members:owner=UCowner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "/members",
		Params: url.Values{
			"c": []string{"3"},
			"a": []string{"1"},
			"b": []string{"2"},
		},
	}

	first := key.String()
	for i := 0; i < 20; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}
