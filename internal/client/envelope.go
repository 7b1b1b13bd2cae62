package client

import (
	"encoding/json"
	"fmt"

	"shoppingstore/ingest/internal/domain"
)

// Response envelopes for the pagedata endpoint. Listing responses nest results
// under data.productListData.results, detail responses under
// data.productData.classifications; a missing branch means a malformed envelope.

type listEnvelope struct {
	Data struct {
		ProductListData *struct {
			// Pointer so a missing results array is distinguishable from a
			// valid empty page.
			Results *[]summaryPayload `json:"results"`
		} `json:"productListData"`
	} `json:"data"`
}

type summaryPayload struct {
	Code  string         `json:"code"`
	Name  string         `json:"name"`
	Media []mediaPayload `json:"media"`
	Price pricePayload   `json:"price"`
}

type mediaPayload struct {
	ProductImageURL string `json:"productImageUrl"`
}

type pricePayload struct {
	MRP string `json:"mrp"`
}

type detailEnvelope struct {
	Data struct {
		ProductData *struct {
			Classifications *[]classificationPayload `json:"classifications"`
		} `json:"productData"`
	} `json:"data"`
}

type classificationPayload struct {
	Name     string           `json:"name"`
	Features []featurePayload `json:"features"`
}

type featurePayload struct {
	Name          string                `json:"name"`
	FeatureValues []featureValuePayload `json:"featureValues"`
}

type featureValuePayload struct {
	Value string `json:"value"`
}

func decodeListEnvelope(body []byte) ([]domain.ProductSummary, error) {
	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode listing envelope: %w", err)
	}

	if envelope.Data.ProductListData == nil || envelope.Data.ProductListData.Results == nil {
		return nil, fmt.Errorf("listing envelope missing data.productListData.results")
	}

	results := *envelope.Data.ProductListData.Results
	summaries := make([]domain.ProductSummary, 0, len(results))
	for _, result := range results {
		media := make([]string, 0, len(result.Media))
		for _, m := range result.Media {
			media = append(media, m.ProductImageURL)
		}

		summaries = append(summaries, domain.ProductSummary{
			Code:      result.Code,
			Name:      result.Name,
			Media:     media,
			ListPrice: result.Price.MRP,
		})
	}

	return summaries, nil
}

func decodeDetailEnvelope(body []byte) ([]domain.Classification, error) {
	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode detail envelope: %w", err)
	}

	if envelope.Data.ProductData == nil || envelope.Data.ProductData.Classifications == nil {
		return nil, fmt.Errorf("detail envelope missing data.productData.classifications")
	}

	payload := *envelope.Data.ProductData.Classifications
	classifications := make([]domain.Classification, 0, len(payload))
	for _, c := range payload {
		features := make([]domain.Feature, 0, len(c.Features))
		for _, f := range c.Features {
			values := make([]string, 0, len(f.FeatureValues))
			for _, v := range f.FeatureValues {
				values = append(values, v.Value)
			}
			features = append(features, domain.Feature{
				Name:   f.Name,
				Values: values,
			})
		}

		classifications = append(classifications, domain.Classification{
			Name:     c.Name,
			Features: features,
		})
	}

	return classifications, nil
}
