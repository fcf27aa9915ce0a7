package market

import (
	"testing"

	"nft-marketplace/pkg/apperr"
)

func TestResolveActor(t *testing.T) {
	const operator = "addr-operator"

	tests := []struct {
		name     string
		actor    Actor
		want     string
		wantCode string
	}{
		{
			name:  "direct caller acts for themselves",
			actor: Direct("addr-alice"),
			want:  "addr-alice",
		},
		{
			name:  "operator acts on behalf of a user",
			actor: DelegatedFor(operator, "addr-bob"),
			want:  "addr-bob",
		},
		{
			name:     "non-operator may not delegate",
			actor:    DelegatedFor("addr-alice", "addr-bob"),
			wantCode: "delegation_not_allowed",
		},
		{
			name:     "operator without on_behalf_of is ambiguous",
			actor:    Direct(operator),
			wantCode: "ambiguous_actor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveActor(tt.actor, operator)
			if tt.wantCode != "" {
				if apperr.CodeOf(err) != tt.wantCode {
					t.Fatalf("code = %q, want %q (err %v)", apperr.CodeOf(err), tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveActor: %v", err)
			}
			if got != tt.want {
				t.Fatalf("actor = %q, want %q", got, tt.want)
			}
		})
	}
}
