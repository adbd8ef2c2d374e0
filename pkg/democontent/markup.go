package democontent

import (
	"fmt"
	"html"
	"strings"
)

const (
	pageIntro = "This is demo content created by Sparti Importer. Replace with your own content."
	postIntro = "This is a sample post body. Edit this in the block editor."
	postLorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Integer nec odio. Praesent libero. Sed cursus ante dapibus diam."
)

// pickImage selects an image round-robin. images is never empty once the
// import has substituted the placeholder.
func pickImage(images []ImportedImage, i int) ImportedImage {
	if len(images) == 0 {
		return ImportedImage{}
	}
	return images[i%len(images)]
}

func escapeURL(raw string) string {
	if raw == "" {
		return ""
	}
	return html.EscapeString(strings.TrimSpace(raw))
}

func imageBlock(img ImportedImage) string {
	if img.ID == 0 || img.URL == "" {
		return ""
	}
	return fmt.Sprintf(
		`<!-- wp:image {"id":%[1]d,"sizeSlug":"large","linkDestination":"none"} -->`+
			`<figure class="wp-block-image size-large"><img src="%[2]s" alt="" class="wp-image-%[1]d"/></figure>`+
			`<!-- /wp:image -->`,
		img.ID, escapeURL(img.URL))
}

// PageMarkup builds the generic single-image page template.
func PageMarkup(title string, img ImportedImage) string {
	return fmt.Sprintf(
		`<!-- wp:group {"layout":{"type":"constrained"}} -->`+
			`<div class="wp-block-group">`+
			`<!-- wp:heading {"textAlign":"center","level":1} -->`+
			`<h1 class="has-text-align-center">%s</h1>`+
			`<!-- /wp:heading -->`+
			`<!-- wp:paragraph {"align":"center"} -->`+
			`<p class="has-text-align-center">%s</p>`+
			`<!-- /wp:paragraph -->`+
			`%s`+
			`<!-- wp:buttons {"layout":{"type":"flex","justifyContent":"center"}} -->`+
			`<div class="wp-block-buttons">`+
			`<!-- wp:button -->`+
			`<div class="wp-block-button"><a class="wp-block-button__link wp-element-button" href="#">Get Started</a></div>`+
			`<!-- /wp:button -->`+
			`</div>`+
			`<!-- /wp:buttons -->`+
			`</div>`+
			`<!-- /wp:group -->`,
		html.EscapeString(title), html.EscapeString(pageIntro), imageBlock(img))
}

// PostMarkup builds the demo post body.
func PostMarkup(title string, img ImportedImage) string {
	return fmt.Sprintf(
		`<!-- wp:group {"layout":{"type":"constrained"}} -->`+
			`<div class="wp-block-group">`+
			`<!-- wp:heading -->`+
			`<h2>%s</h2>`+
			`<!-- /wp:heading -->`+
			`<!-- wp:paragraph -->`+
			`<p>%s</p>`+
			`<!-- /wp:paragraph -->`+
			`%s`+
			`<!-- wp:paragraph -->`+
			`<p>%s</p>`+
			`<!-- /wp:paragraph -->`+
			`</div>`+
			`<!-- /wp:group -->`,
		html.EscapeString(title), html.EscapeString(postIntro), imageBlock(img), html.EscapeString(postLorem))
}

// HomeMarkup builds the landing page: hero, features, testimonials and a
// call to action.
func HomeMarkup(images []ImportedImage) string {
	var b strings.Builder
	b.WriteString(heroSection(pickImage(images, 0)))
	b.WriteString(featuresSection(pickImage(images, 1), pickImage(images, 2), pickImage(images, 3)))
	b.WriteString(testimonialsSection)
	b.WriteString(callToActionSection)
	return b.String()
}

func heroSection(hero ImportedImage) string {
	return fmt.Sprintf(
		`<!-- wp:cover {"url":"%[1]s","dimRatio":40,"overlayColor":"black","minHeight":60,"minHeightUnit":"vh","contentPosition":"center center"} -->`+
			`<div class="wp-block-cover is-light" style="min-height:60vh"><span aria-hidden="true" class="wp-block-cover__background has-black-background-color has-background-dim-40 has-background-dim"></span><img class="wp-block-cover__image-background" alt="" src="%[1]s" data-object-fit="cover"/>`+
			`<div class="wp-block-cover__inner-container">`+
			`<!-- wp:group {"layout":{"type":"constrained","contentSize":"1100px"}} -->`+
			`<div class="wp-block-group"><!-- wp:heading {"textAlign":"center","level":1} -->`+
			`<h1 class="has-text-align-center">Build with Sparti + Sage</h1><!-- /wp:heading --><!-- wp:paragraph {"align":"center","fontSize":"large"} -->`+
			`<p class="has-text-align-center has-large-font-size">Modern WordPress theme with Blade, Tailwind, and Vite.</p><!-- /wp:paragraph --><!-- wp:buttons {"layout":{"type":"flex","justifyContent":"center"}} -->`+
			`<div class="wp-block-buttons"><!-- wp:button {"className":"is-style-fill"} -->`+
			`<div class="wp-block-button is-style-fill"><a class="wp-block-button__link wp-element-button" href="#features">Explore Features</a></div><!-- /wp:button --><!-- wp:button {"className":"is-style-outline"} -->`+
			`<div class="wp-block-button is-style-outline"><a class="wp-block-button__link wp-element-button" href="#contact">Contact</a></div><!-- /wp:button --></div><!-- /wp:buttons --></div><!-- /wp:group -->`+
			`</div></div><!-- /wp:cover -->`,
		escapeURL(hero.URL))
}

type feature struct {
	heading string
	body    string
}

var features = []feature{
	{heading: "Blade Templates", body: "Clean, reusable UI with Laravel Blade inside WordPress."},
	{heading: "Tailwind CSS", body: "Utility-first styling with fast iteration and consistency."},
	{heading: "Vite + HMR", body: "Modern asset pipeline with instant reloads and builds."},
}

func featuresSection(images ...ImportedImage) string {
	var b strings.Builder
	b.WriteString(`<!-- wp:group {"tagName":"section","layout":{"type":"constrained","contentSize":"1100px"},"style":{"spacing":{"padding":{"top":"4rem","bottom":"4rem"}}},"anchor":"features"} -->`)
	b.WriteString(`<section id="features" class="wp-block-group" style="padding-top:4rem;padding-bottom:4rem"><!-- wp:heading {"textAlign":"center","level":2} -->`)
	b.WriteString(`<h2 class="has-text-align-center">Why Sparti</h2><!-- /wp:heading --><!-- wp:columns -->`)
	b.WriteString(`<div class="wp-block-columns">`)
	for i, f := range features {
		img := pickImage(images, i)
		fmt.Fprintf(&b,
			`<!-- wp:column --><div class="wp-block-column"><!-- wp:image {"id":%[1]d,"sizeSlug":"large","linkDestination":"none"} -->`+
				`<figure class="wp-block-image size-large"><img src="%[2]s" alt="" class="wp-image-%[1]d"/></figure><!-- /wp:image --><!-- wp:heading {"level":3} -->`+
				`<h3>%[3]s</h3><!-- /wp:heading --><!-- wp:paragraph -->`+
				`<p>%[4]s</p><!-- /wp:paragraph --></div><!-- /wp:column -->`,
			img.ID, escapeURL(img.URL), html.EscapeString(f.heading), html.EscapeString(f.body))
	}
	b.WriteString(`</div><!-- /wp:columns --></section><!-- /wp:group -->`)
	return b.String()
}

const testimonialsSection = `<!-- wp:group {"tagName":"section","layout":{"type":"constrained","contentSize":"900px"},"style":{"spacing":{"padding":{"top":"3rem","bottom":"3rem"}}}} -->` +
	`<section class="wp-block-group" style="padding-top:3rem;padding-bottom:3rem"><!-- wp:heading {"textAlign":"center","level":2} -->` +
	`<h2 class="has-text-align-center">What people say</h2><!-- /wp:heading --><!-- wp:columns -->` +
	`<div class="wp-block-columns"><!-- wp:column -->` +
	`<div class="wp-block-column"><!-- wp:quote -->` +
	`<blockquote class="wp-block-quote"><p>“Sage supercharged our WordPress development.”</p><cite>Dev Lead</cite></blockquote><!-- /wp:quote --></div><!-- /wp:column --><!-- wp:column -->` +
	`<div class="wp-block-column"><!-- wp:quote -->` +
	`<blockquote class="wp-block-quote"><p>“Blade + Tailwind made our UI work a breeze.”</p><cite>Product Designer</cite></blockquote><!-- /wp:quote --></div><!-- /wp:column --></div><!-- /wp:columns --></section><!-- /wp:group -->`

const callToActionSection = `<!-- wp:group {"tagName":"section","layout":{"type":"constrained","contentSize":"900px"},"style":{"color":{"background":"#0f172a"},"spacing":{"padding":{"top":"3rem","bottom":"3rem","left":"2rem","right":"2rem"}}},"textColor":"white","anchor":"contact"} -->` +
	`<section id="contact" class="wp-block-group has-white-color has-text-color" style="background-color:#0f172a;padding-top:3rem;padding-right:2rem;padding-bottom:3rem;padding-left:2rem">` +
	`<!-- wp:heading {"textAlign":"center","level":2} -->` +
	`<h2 class="has-text-align-center">Ready to build?</h2><!-- /wp:heading --><!-- wp:paragraph {"align":"center"} -->` +
	`<p class="has-text-align-center">Start with this theme, then customize blocks and patterns.</p><!-- /wp:paragraph --><!-- wp:buttons {"layout":{"type":"flex","justifyContent":"center"}} -->` +
	`<div class="wp-block-buttons"><!-- wp:button {"backgroundColor":"white","textColor":"black"} -->` +
	`<div class="wp-block-button"><a class="wp-block-button__link has-white-background-color has-black-color has-text-color has-background wp-element-button" href="#">Get Started</a></div><!-- /wp:button --></div><!-- /wp:buttons -->` +
	`</section><!-- /wp:group -->`
