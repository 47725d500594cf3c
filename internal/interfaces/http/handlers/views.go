package handlers

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/entities"
)

type assetView struct {
	Registry string `json:"registry"`
	TokenID  string `json:"tokenId"`
}

type offerView struct {
	Registry      string     `json:"registry"`
	ID            uint64     `json:"id"`
	MakerAsset    assetView  `json:"makerAsset"`
	TakerAsset    assetView  `json:"takerAsset"`
	MakerAddress  string     `json:"makerAddress"`
	PaymentAmount string     `json:"paymentAmount"`
	State         string     `json:"state"`
	StateCode     uint8      `json:"stateCode"`
	TakerAddress  *string    `json:"takerAddress,omitempty"`
	SettledBy     *string    `json:"settledBy,omitempty"`
	SettledAt     *time.Time `json:"settledAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type registryView struct {
	Address      string     `json:"address"`
	Owner        string     `json:"owner"`
	PaymentToken string     `json:"paymentToken"`
	Factory      *string    `json:"factory,omitempty"`
	Template     *string    `json:"template,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	OfferCount   uint64     `json:"offerCount"`
}

type eventView struct {
	Registry string `json:"registry"`
	OfferID  uint64 `json:"offerId"`
	State    string `json:"state"`
	LogIndex uint64 `json:"logIndex"`
	Topic    string `json:"topic"`
	Data     string `json:"data"`
}

type factoryView struct {
	Address         string  `json:"address"`
	Owner           string  `json:"owner"`
	Template        string  `json:"template"`
	PaymentToken    string  `json:"paymentToken"`
	Nonce           uint64  `json:"nonce"`
	CurrentInstance *string `json:"currentInstance"`
}

func toAssetView(a entities.AssetRef) assetView {
	return assetView{Registry: a.Registry.Hex(), TokenID: a.TokenID.String()}
}

func toOfferView(o *entities.SwapOffer) offerView {
	return offerView{
		Registry:      o.RegistryAddress.Hex(),
		ID:            o.ID,
		MakerAsset:    toAssetView(o.MakerAsset),
		TakerAsset:    toAssetView(o.TakerAsset),
		MakerAddress:  o.MakerAddress.Hex(),
		PaymentAmount: o.PaymentAmount.String(),
		State:         o.State.String(),
		StateCode:     uint8(o.State),
		TakerAddress:  o.TakerAddress.Ptr(),
		SettledBy:     o.SettledBy.Ptr(),
		SettledAt:     o.SettledAt.Ptr(),
		CreatedAt:     o.CreatedAt,
	}
}

func toOfferViews(offers []*entities.SwapOffer) []offerView {
	out := make([]offerView, 0, len(offers))
	for _, o := range offers {
		out = append(out, toOfferView(o))
	}
	return out
}

func toRegistryView(r *entities.SwapRegistry) registryView {
	return registryView{
		Address:      r.Address.Hex(),
		Owner:        r.Owner.Hex(),
		PaymentToken: r.PaymentToken.Hex(),
		Factory:      r.Factory.Ptr(),
		Template:     r.Template.Ptr(),
		Expiry:       r.Expiry.Ptr(),
		OfferCount:   r.NextOfferID,
	}
}

func toEventViews(events []*entities.SwapEvent) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, eventView{
			Registry: e.RegistryAddress.Hex(),
			OfferID:  e.OfferID,
			State:    e.State.String(),
			LogIndex: e.LogIndex,
			Topic:    e.Topic.Hex(),
			Data:     e.Data,
		})
	}
	return out
}

func toFactoryView(f *entities.SwapFactory) factoryView {
	return factoryView{
		Address:         f.Address.Hex(),
		Owner:           f.Owner.Hex(),
		Template:        f.Template.Hex(),
		PaymentToken:    f.PaymentToken.Hex(),
		Nonce:           f.Nonce,
		CurrentInstance: f.CurrentInstance.Ptr(),
	}
}

func hexOrNil(addr *common.Address) *string {
	if addr == nil {
		return nil
	}
	s := addr.Hex()
	return &s
}
