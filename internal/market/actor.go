package market

import (
	"nft-marketplace/pkg/apperr"
)

// Actor 带标签的操作者参数。普通调用由Caller本人发起并作用于自身；
// 运营方可代第三方操作（例如转移引发的自动撤单），此时OnBehalfOf
// 指明实际当事人。
type Actor struct {
	Caller     string `json:"-"`
	OnBehalfOf string `json:"on_behalf_of,omitempty"`
}

// Direct 构造直接调用者
func Direct(caller string) Actor {
	return Actor{Caller: caller}
}

// DelegatedFor 构造运营方代操作
func DelegatedFor(caller, onBehalfOf string) Actor {
	return Actor{Caller: caller, OnBehalfOf: onBehalfOf}
}

// resolveActor 解析实际当事人地址。唯一的授权判定点：
//   - 携带OnBehalfOf时调用者必须是运营方；
//   - 运营方直接调用而不指明当事人视为歧义，拒绝。
func resolveActor(a Actor, operator string) (string, error) {
	if a.OnBehalfOf != "" {
		if a.Caller != operator {
			return "", apperr.Unauthorized("delegation_not_allowed", "only the operator may act on behalf of another address")
		}
		return a.OnBehalfOf, nil
	}
	if a.Caller == operator {
		return "", apperr.Unauthorized("ambiguous_actor", "operator must specify on_behalf_of")
	}
	return a.Caller, nil
}
