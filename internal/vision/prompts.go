package vision

import "fmt"

const framingPrompt = `You are a navigation assistant helping a visually impaired user position their camera to see a store shelf.

Analyze the current camera view and decide whether ALL products on the shelf are visible in the frame.

Instructions:
- Check whether any products appear cut off at the edges (left, right, top, bottom)
- If the view is incomplete, give ONE clear, short direction to fix it:
  - "Move left/right" for horizontal adjustments
  - "Move up/down" or "tilt up/down" for vertical adjustments
  - "Step back" if too close, "step forward" if too far
- Keep the advice SHORT and actionable - the user hears it read aloud

OUTPUT FORMAT - respond with ONLY a JSON object, no markdown:

{"framed": true or false, "advice": "one short spoken sentence"}

When the full shelf is visible, set "framed" to true and leave a short confirmation in "advice".`

const identificationPrompt = `You are an item identification assistant for visually impaired users.

You are looking at a store shelf. Identify ALL products visible and output them as CSV data.

OUTPUT FORMAT - You MUST output ONLY a valid CSV with these exact columns:
item_number,product_name,brand,location,price

Rules:
- First line must be the header: item_number,product_name,brand,location,price
- List EVERY distinct product you can see
- item_number: sequential number starting from 1
- product_name: the product type/name (e.g., "Cola 330ml", "Sparkling Water 500ml")
- brand: the brand name if visible, otherwise "Unknown"
- location: describe using "top/middle/bottom shelf" and "left/center/right" (e.g., "top shelf left")
- price: the price if visible, otherwise "N/A"
- Do NOT include any text before or after the CSV
- Do NOT use markdown code blocks

Example output:
item_number,product_name,brand,location,price
1,Cola 330ml,Coca-Cola,top shelf left,$1.99
2,Sparkling Water 500ml,Perrier,top shelf center,$2.49`

const trackingPromptTemplate = `You are a hand-guidance assistant helping a visually impaired user reach for a specific item on a shelf.

The user has selected an item they want. You can see their current camera view, likely showing their hand near the shelf.

- The user wants to find: %s
- Its known location is: %s

Report where the item is relative to the user's hand as a bearing:
- angle_degrees: direction from the hand to the item, 0 (or 360) means straight up toward 12 o'clock, 90 means right toward 3 o'clock, continuing clockwise
- distance: "near" when the hand is within a few centimeters of the item, otherwise "far"

OUTPUT FORMAT - respond with ONLY a JSON object, no markdown:

{"angle_degrees": 120, "distance": "far"}`

func trackingPrompt(itemName, itemLocation string) string {
	if itemLocation == "" {
		itemLocation = "unknown"
	}
	return fmt.Sprintf(trackingPromptTemplate, itemName, itemLocation)
}
