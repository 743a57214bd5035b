package cart

import (
	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	cartsvc "github.com/SeptianAdiraharja/Inventory/internal/cart"
)

func toLineInputs(payload dto.AddItemsRequest) []cartsvc.LineInput {
	lines := make([]cartsvc.LineInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, cartsvc.LineInput{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		})
	}
	return lines
}
