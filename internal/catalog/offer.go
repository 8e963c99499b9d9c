package catalog

import "github.com/hotelprocure/procure/internal/entity"

// ActiveOffers keeps active offers in their original order.
func ActiveOffers(offers []*entity.ProductOffer) []*entity.ProductOffer {
	active := make([]*entity.ProductOffer, 0, len(offers))
	for _, o := range offers {
		if o != nil && o.IsActive {
			active = append(active, o)
		}
	}
	return active
}

// BestOffer returns the cheapest active offer; the first one wins on equal prices.
func BestOffer(offers []*entity.ProductOffer) *entity.ProductOffer {
	var best *entity.ProductOffer
	for _, o := range ActiveOffers(offers) {
		if best == nil || o.Price.Cmp(best.Price) < 0 {
			best = o
		}
	}
	return best
}
